package model

import "testing"

type kindCounter struct {
	text, tables, images int
}

func (k *kindCounter) VisitText(*TextBlock) { k.text++ }
func (k *kindCounter) VisitTable(*Table)    { k.tables++ }
func (k *kindCounter) VisitImage(*Image)    { k.images++ }

func sampleContents() []ContentItem {
	return []ContentItem{
		&TextBlock{Lines: []Line{
			{Text: "Hello", BBox: BBox{X0: 72, Top: 100, X1: 120, Bottom: 112}, FontSize: 12},
			{Text: "World", BBox: BBox{X0: 72, Top: 114, X1: 130, Bottom: 126}, FontSize: 12},
		}},
		&Table{Rows: [][]string{{"a", "b"}, {"1", "2"}}, BBox: BBox{X0: 72, Top: 200, X1: 300, Bottom: 260}},
		&Image{Ref: "page-1-Im0", BBox: BBox{X0: 72, Top: 300, X1: 200, Bottom: 400}},
	}
}

func TestVisitor_DispatchesEveryKind(t *testing.T) {
	counter := &kindCounter{}
	for _, item := range sampleContents() {
		item.Accept(counter)
	}

	if counter.text != 1 || counter.tables != 1 || counter.images != 1 {
		t.Errorf("Unexpected visit counts %+v", counter)
	}
}

func TestContentItem_Kinds(t *testing.T) {
	want := []Kind{KindText, KindTable, KindImage}
	for i, item := range sampleContents() {
		if item.Kind() != want[i] {
			t.Errorf("Item %d: expected kind %s, got %s", i, want[i], item.Kind())
		}
	}
}

func TestTextBlock_BoundingBoxAndText(t *testing.T) {
	block := sampleContents()[0].(*TextBlock)

	box := block.BoundingBox()
	want := BBox{X0: 72, Top: 100, X1: 130, Bottom: 126}
	if box != want {
		t.Errorf("Expected %+v, got %+v", want, box)
	}
	if block.Text() != "Hello World" {
		t.Errorf("Expected 'Hello World', got '%s'", block.Text())
	}

	last, ok := block.LastLine()
	if !ok || last.Text != "World" {
		t.Errorf("Expected last line 'World', got '%s'", last.Text)
	}

	empty := &TextBlock{}
	if _, ok := empty.LastLine(); ok {
		t.Error("Expected no last line for empty block")
	}
	if !empty.BoundingBox().IsEmpty() {
		t.Error("Expected empty bbox for empty block")
	}
}

func TestCloneContents_IsDeep(t *testing.T) {
	original := sampleContents()
	clone := CloneContents(original)

	if len(clone) != len(original) {
		t.Fatalf("Expected %d items, got %d", len(original), len(clone))
	}

	clone[0].(*TextBlock).Lines[0].Text = "changed"
	clone[1].(*Table).Rows[0][0] = "changed"
	clone[2].(*Image).Ref = "changed"

	if original[0].(*TextBlock).Lines[0].Text != "Hello" {
		t.Error("Clone shares text lines with original")
	}
	if original[1].(*Table).Rows[0][0] != "a" {
		t.Error("Clone shares table rows with original")
	}
	if original[2].(*Image).Ref != "page-1-Im0" {
		t.Error("Clone shares image with original")
	}

	if CloneContents(nil) != nil {
		t.Error("Expected nil clone of nil contents")
	}
}

func TestCloneContents_SkipsNilItems(t *testing.T) {
	var block *TextBlock
	var table *Table
	items := []ContentItem{nil, block, &Image{Ref: "kept"}, table}

	clone := CloneContents(items)
	if len(clone) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(clone))
	}
	if img, ok := clone[0].(*Image); !ok || img.Ref != "kept" {
		t.Errorf("Expected the image to survive, got %v", clone[0])
	}
}

func TestIsNil(t *testing.T) {
	var block *TextBlock
	var table *Table
	var image *Image

	tests := []struct {
		item ContentItem
		want bool
	}{
		{nil, true},
		{block, true},
		{table, true},
		{image, true},
		{&TextBlock{}, false},
		{&Table{}, false},
		{&Image{}, false},
	}
	for i, tt := range tests {
		if got := IsNil(tt.item); got != tt.want {
			t.Errorf("Case %d: expected %v, got %v", i, tt.want, got)
		}
	}
}

func TestTable_Markdown(t *testing.T) {
	table := &Table{Rows: [][]string{{"Name", "Note"}, {"a|b", "x\ny"}}}

	got := table.ToMarkdown()
	want := "| Name | Note |\n| --- | --- |\n| a\\|b | x y |\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if table.RowCount() != 2 || table.ColCount() != 2 {
		t.Errorf("Unexpected dimensions %dx%d", table.RowCount(), table.ColCount())
	}
}
