package pdfsource

import (
	"github.com/ledongthuc/pdf"
	"github.com/tsawler/folio/model"
)

// imageWalker interprets content streams, tracking the graphics state
// stack far enough to place image XObjects
type imageWalker struct {
	page   int
	box    pageBox
	images []*model.Image
}

// placedImages returns the images painted on a page in drawing order
func placedImages(page pdf.Page, n int, box pageBox) []*model.Image {
	w := &imageWalker{page: n, box: box}
	w.walk(page.V.Key("Contents"), inherited(page.V, "Resources"), model.Identity(), 0)
	return w.images
}

// walk interprets one content stream (or an array of them, which behaves as
// their concatenation) starting from ctm
func (w *imageWalker) walk(contents, resources pdf.Value, ctm model.Matrix, depth int) {
	var streams []pdf.Value
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			streams = append(streams, contents.Index(i))
		}
	} else if contents.Kind() == pdf.Stream {
		streams = append(streams, contents)
	}

	var stack []model.Matrix
	for _, strm := range streams {
		pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
			n := stk.Len()
			args := make([]pdf.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i] = stk.Pop()
			}

			switch op {
			case "q":
				stack = append(stack, ctm)
			case "Q":
				if len(stack) > 0 {
					ctm = stack[len(stack)-1]
					stack = stack[:len(stack)-1]
				}
			case "cm":
				if len(args) != 6 {
					return
				}
				var m model.Matrix
				for i := range m {
					m[i] = args[i].Float64()
				}
				ctm = m.Multiply(ctm)
			case "Do":
				if len(args) != 1 || args[0].Kind() != pdf.Name {
					return
				}
				w.paint(args[0].Name(), resources, ctm, depth)
			}
		})
	}
}

// paint handles Do for the named XObject
func (w *imageWalker) paint(name string, resources pdf.Value, ctm model.Matrix, depth int) {
	xobj := resources.Key("XObject").Key(name)
	if xobj.IsNull() {
		return
	}

	switch xobj.Key("Subtype").Name() {
	case "Image":
		minX, minY, maxX, maxY := ctm.UnitSquareBounds()
		w.images = append(w.images, &model.Image{
			Ref:  imageRef(w.page, name),
			BBox: w.box.toPage(minX, minY, maxX, maxY),
		})
	case "Form":
		if depth >= maxFormDepth {
			return
		}
		formCTM := ctm
		if m := xobj.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
			var fm model.Matrix
			for i := range fm {
				fm[i] = m.Index(i).Float64()
			}
			formCTM = fm.Multiply(ctm)
		}
		formResources := xobj.Key("Resources")
		if formResources.IsNull() {
			formResources = resources
		}
		w.walk(xobj, formResources, formCTM, depth+1)
	}
}
