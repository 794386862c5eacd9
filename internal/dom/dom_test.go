package dom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxRectFollowsParents(t *testing.T) {
	page := &Box{OffsetTop: 100}
	section := &Box{OffsetTop: 20, OffsetLeft: 5, Parent: page}
	card := &Box{OffsetTop: 3, OffsetLeft: 18, Width: 18, Height: 4, Parent: section}

	require.Equal(t, Rect{Top: 123, Left: 23, Width: 18, Height: 4}, card.Rect())

	var missing *Box
	require.Equal(t, Rect{}, missing.Rect())
}

func TestElementAttributesAreCaseInsensitive(t *testing.T) {
	el := NewElement("a", []string{"purecounter"}, map[string]string{"Data-PureCounter-End": "10"})

	v, ok := el.Attr("data-purecounter-end")
	require.True(t, ok)
	require.Equal(t, "10", v)

	el.SetAttr("DATA-PURECOUNTER-START", "2")
	attrs := el.Attrs()
	require.Equal(t, "2", attrs["data-purecounter-start"])

	attrs["data-purecounter-end"] = "99"
	v, _ = el.Attr("data-purecounter-end")
	require.Equal(t, "10", v)
}

func TestDocumentQueries(t *testing.T) {
	a := NewElement("a", []string{"purecounter"}, nil)
	b := NewElement("b", []string{"other"}, nil)
	c := NewElement("c", []string{"x", "purecounter"}, nil)
	c.Box = &Box{OffsetTop: 30, Height: 4}
	doc := NewDocument("t", []*Element{a, b, c})

	require.Equal(t, []*Element{a, c}, doc.QueryClass("purecounter"))
	require.Same(t, b, doc.ByID("b"))
	require.Nil(t, doc.ByID("zzz"))
	require.Equal(t, 34.0, doc.Height())
}

func TestDocumentRenderHook(t *testing.T) {
	a := NewElement("a", nil, nil)
	doc := NewDocument("t", []*Element{a})
	var seen []string
	doc.OnRender(func(el *Element) { seen = append(seen, el.ID+"="+el.Content()) })

	a.SetContent("42")
	require.Equal(t, []string{"a=42"}, seen)
}
