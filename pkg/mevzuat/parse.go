package mevzuat

import (
	"fmt"

	"github.com/mevzuatgpt/mevzuatctl/pkg/truthy"
	"github.com/tidwall/gjson"
)

// ParseResult decodes the data text of a result event into a ScanResult.
// Server-sent upload flags arrive as bool, number or string depending on
// which backend produced them, so every flag goes through truthy.Is.
func ParseResult(dataText string) (*ScanResult, error) {
	if !gjson.Valid(dataText) {
		return nil, fmt.Errorf("result payload is not valid JSON")
	}

	root := gjson.Parse(dataText)
	if !root.IsObject() {
		return nil, fmt.Errorf("result payload is not an object")
	}

	res := &ScanResult{
		TotalSections: int(root.Get("toplam_bolum_sayisi").Int()),
		TotalItems:    int(root.Get("toplam_belge_sayisi").Int()),
		UploadedCount: int(root.Get("yuklenen_belge_sayisi").Int()),
	}

	root.Get("bolumler").ForEach(func(_, b gjson.Result) bool {
		sec := Section{
			Title:     b.Get("bolum_adi").String(),
			ItemCount: int(b.Get("belge_sayisi").Int()),
		}
		b.Get("belgeler").ForEach(func(_, d gjson.Result) bool {
			sec.Items = append(sec.Items, ScanItem{
				ID:         d.Get("id").String(),
				Title:      d.Get("baslik").String(),
				Link:       d.Get("link").String(),
				MevzuatGPT: truthy.Is(d.Get("mevzuatgpt").Value()),
				Portal:     truthy.Is(d.Get("portal").Value()),
			})
			return true
		})
		res.Sections = append(res.Sections, sec)
		return true
	})

	return res, nil
}
