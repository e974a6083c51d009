package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/internal/library"
)

type ingestOptions struct {
	inbox  string
	images string
	now    func() time.Time
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	ing := &ingestOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Catalog scans waiting in the inbox",
		Long: `ingest walks the scans in the inbox, asks for each artifact's metadata,
moves the image into the vault and adds the artifact to the top of the catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.catalog == "" {
				return errors.New("--catalog is required for ingest")
			}
			return runIngest(cmd, opts, ing)
		},
	}

	cmd.Flags().StringVar(&ing.inbox, "inbox", "scans_inbox", "directory holding new scans")
	cmd.Flags().StringVar(&ing.images, "images", "public/img/artifacts", "image vault directory")
	return cmd
}

func runIngest(cmd *cobra.Command, opts *rootOptions, ing *ingestOptions) error {
	out := cmd.OutOrStdout()
	scans, err := library.PendingScans(ing.inbox)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		fmt.Fprintf(out, "No images found in '%s'.\nDrop .jpg or .png files there to begin ingestion.\n", ing.inbox)
		return nil
	}

	fmt.Fprintf(out, "Found %d pending scan(s).\n", len(scans))
	p := newPrompter(cmd.InOrStdin(), out)

	for _, scan := range scans {
		a, ok := askArtifact(p, scan)
		if !ok {
			return nil
		}
		if a.Title == "" {
			fmt.Fprintf(out, "Skipped %s: a title is required.\n", scan)
			continue
		}

		name, err := library.IngestScan(opts.catalog, ing.inbox, ing.images, scan, a, ing.now())
		if errors.Is(err, library.ErrDuplicateArtifact) {
			fmt.Fprintf(out, "Skipped %s: %v.\n", scan, err)
			continue
		}
		if err != nil {
			return err
		}
		opts.logger.Info("artifact ingested", zap.String("id", a.ID), zap.String("image", name))
		fmt.Fprintf(out, "Ingested %s as %s.\n", a.ID, name)
	}
	return nil
}

// askArtifact prompts for the metadata of one scan.
func askArtifact(p *prompter, scan string) (library.Artifact, bool) {
	fmt.Fprintf(p.out, "\nProcessing File: %s\n", scan)

	var a library.Artifact
	var ok bool
	if a.ID, ok = p.ask("Artifact ID", library.SuggestID(scan)); !ok {
		return a, false
	}
	a.Title, _ = p.ask("Title", "")

	fmt.Fprintln(p.out, "Types: [1] Manuscript  [2] Map  [3] Oddity  [4] Ephemera")
	choice, _ := p.ask("Type", "1")
	a.Type = library.ScanTypes[0]
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(library.ScanTypes) {
		a.Type = library.ScanTypes[n-1]
	}

	a.Summary, _ = p.ask("Short Summary (Card view)", "")
	a.Desc, _ = p.ask("Full Description (Detail view)", "")
	a.Origin, _ = p.ask("Origin/Location", "")
	a.Material, _ = p.ask("Condition (e.g., 'Pristine Vellum', 'Water Damaged')", "")
	a.Hazard, _ = p.ask("Resonance/Spark", "")
	a.Img = library.ImageName(a.ID, scan)
	return a, true
}
