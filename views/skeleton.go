package views

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// DefaultSkeletonCount is how many placeholder cards the dashboard shows
// while the first entries fragment loads.
const DefaultSkeletonCount = 8

// skeletonStaggerMs is the entrance-animation offset between consecutive
// placeholder cards, in milliseconds.
const skeletonStaggerMs = 50

// EntrySkeleton renders one placeholder card matching the entry card layout:
// icon circle, status pill, date bar, three metric blocks, ROI pill, and a
// note line. It takes no input and renders the same markup every time.
func EntrySkeleton() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeEntrySkeleton(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeEntrySkeleton(buf *bytes.Buffer) {
	buf.WriteString(`<div class="entry-card entry-skeleton">`)
	buf.WriteString(`<div class="entry-head">`)
	buf.WriteString(`<div class="skeleton-block skeleton-icon"></div>`)
	buf.WriteString(`<div class="skeleton-block skeleton-status"></div>`)
	buf.WriteString(`</div>`)
	buf.WriteString(`<div class="skeleton-block skeleton-date"></div>`)
	buf.WriteString(`<div class="entry-metrics">`)
	for i := 0; i < 3; i++ {
		buf.WriteString(`<div class="skeleton-block skeleton-metric"></div>`)
	}
	buf.WriteString(`</div>`)
	buf.WriteString(`<div class="skeleton-block skeleton-roi"></div>`)
	buf.WriteString(`<div class="skeleton-block skeleton-note"></div>`)
	buf.WriteString(`</div>`)
}

// EntriesListSkeleton renders count placeholder cards inside the list
// container. Card i fades in after i*50ms so the grid fills top to bottom.
// count <= 0 renders an empty container.
func EntriesListSkeleton(count int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if count < 0 {
			count = 0
		}
		var buf bytes.Buffer
		buf.WriteString(`<div class="entries-list entries-list-skeleton">`)
		for i := 0; i < count; i++ {
			buf.WriteString(`<div class="skeleton-slot" style="animation-delay:`)
			buf.WriteString(strconv.Itoa(i * skeletonStaggerMs))
			buf.WriteString(`ms">`)
			writeEntrySkeleton(&buf)
			buf.WriteString(`</div>`)
		}
		buf.WriteString(`</div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}
