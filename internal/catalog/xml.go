package catalog

import (
	"encoding/xml"
	"strconv"

	"product-viewer/internal/viewer"
)

// xmlCatalog matches the category-grouped XML product list.
type xmlCatalog struct {
	Categories []xmlCategory `xml:"Category"`
}

type xmlCategory struct {
	Index    string       `xml:"Index,attr"`
	Name     string       `xml:"Name,attr"`
	Products []xmlProduct `xml:"Product"`
}

type xmlProduct struct {
	ID        string   `xml:"ID,attr"`
	Title     string   `xml:"Title,attr"`
	Subtitle  string   `xml:"Subtitle,attr"`
	MainImage string   `xml:"MainImage,attr"`
	Model3D   string   `xml:"Model3D,attr"`
	Featured  bool     `xml:"Featured,attr"`
	View      string   `xml:"View,attr"`
	Flip      string   `xml:"Flip,attr"`
	Color     string   `xml:"Color,attr"`
	Images360 []string `xml:"Image360"`
	Images    []string `xml:"Image"`
}

// parseXML reads products grouped by category. Entries with a malformed id
// are skipped.
func parseXML(raw []byte) ([]Product, error) {
	var doc xmlCatalog
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	var products []Product
	for _, cat := range doc.Categories {
		catIdx, err := strconv.Atoi(cat.Index)
		if err != nil {
			continue
		}
		for _, p := range cat.Products {
			id, err := strconv.Atoi(p.ID)
			if err != nil {
				continue
			}
			products = append(products, Product{
				ID:           id,
				Title:        p.Title,
				Subtitle:     p.Subtitle,
				Category:     catIdx,
				CategoryName: cat.Name,
				MainImage:    p.MainImage,
				Images360:    p.Images360,
				Model3D:      p.Model3D,
				Images:       p.Images,
				Featured:     p.Featured,
				Display:      viewer.Display{View: p.View, Flip: p.Flip, Color: p.Color},
			})
		}
	}
	return products, nil
}
