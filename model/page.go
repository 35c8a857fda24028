package model

// Page represents a single page of a processed document
type Page struct {
	Number   int           // 1-indexed page number
	Width    float64       // Page width in points
	Height   float64       // Page height in points
	Contents []ContentItem // Reading-order content stream
	Verdict  Verdict
}

// NewPage creates a pending page with given number and dimensions
func NewPage(number int, width, height float64) *Page {
	return &Page{
		Number:   number,
		Width:    width,
		Height:   height,
		Contents: make([]ContentItem, 0),
	}
}

// Area returns the page area in square points
func (p *Page) Area() float64 {
	return p.Width * p.Height
}

// TextBlocks returns the text blocks on the page in reading order
func (p *Page) TextBlocks() []*TextBlock {
	var blocks []*TextBlock
	for _, item := range p.Contents {
		if b, ok := item.(*TextBlock); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Tables returns all table items on the page
func (p *Page) Tables() []*Table {
	var tables []*Table
	for _, item := range p.Contents {
		if t, ok := item.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// Images returns all image items on the page
func (p *Page) Images() []*Image {
	var images []*Image
	for _, item := range p.Contents {
		if i, ok := item.(*Image); ok {
			images = append(images, i)
		}
	}
	return images
}
