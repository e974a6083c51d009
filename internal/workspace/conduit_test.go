package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConduit_AppendSanitises(t *testing.T) {
	c := NewConduit(nil)

	e := c.Append(`<strong>System:</strong> <span class="ai-text">ok</span><script>alert(1)</script><img src=x onerror=y>`, true, "red")
	assert.Contains(t, e.HTML, "<strong>System:</strong>")
	assert.Contains(t, e.HTML, `<span class="ai-text">ok</span>`)
	assert.NotContains(t, e.HTML, "<script")
	assert.NotContains(t, e.HTML, "<img")
	assert.True(t, e.Emphasized)
	assert.Equal(t, "red", e.Color)
	assert.Equal(t, uint64(1), e.Seq)
	assert.NotEmpty(t, e.ID)

	bad := c.Append("x", false, "red;background:url(evil)")
	assert.Empty(t, bad.Color)
}

func TestConduit_AppendOnlyOrdering(t *testing.T) {
	c := NewConduit(func() time.Time { return fixedNow })
	for _, s := range []string{"one", "two", "three"} {
		c.Append(s, false, "")
	}

	all := c.Entries()
	require.Len(t, all, 3)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{all[0].Seq, all[1].Seq, all[2].Seq})
	assert.Equal(t, fixedNow, all[0].At)

	since := c.Since(1)
	require.Len(t, since, 2)
	assert.Equal(t, "two", since[0].Text())
	assert.Empty(t, c.Since(3))
	assert.Len(t, c.Since(0), 3)

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, "three", last.Text())
}

func TestConduit_Subscribe(t *testing.T) {
	c := NewConduit(nil)
	ch, cancel := c.Subscribe(4)

	var hooked []string
	c.OnAppend(func(e Entry) { hooked = append(hooked, e.Text()) })

	c.Append("<strong>System:</strong> hi", false, "")

	select {
	case e := <-ch:
		assert.Equal(t, "System: hi", e.Text())
	case <-time.After(time.Second):
		t.Fatal("no entry delivered")
	}
	assert.Equal(t, []string{"System: hi"}, hooked)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	c.Append("after cancel", false, "")
	assert.Equal(t, 2, c.Len())
}

func TestConduit_SlowSubscriberDoesNotBlock(t *testing.T) {
	c := NewConduit(nil)
	_, cancel := c.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			c.Append("burst", false, "")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("append blocked on a full subscriber")
	}
	assert.Equal(t, 10, c.Len())
}

func TestConduit_CloseEndsSubscriptions(t *testing.T) {
	c := NewConduit(nil)
	ch, cancel := c.Subscribe(4)

	c.Close()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	late, cancelLate := c.Subscribe(4)
	defer cancelLate()
	_, open = <-late
	assert.False(t, open)

	c.Append("still logged", false, "")
	assert.Equal(t, 1, c.Len())
}
