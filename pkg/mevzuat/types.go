// Package mevzuat holds the domain model of a scan: the candidate legal
// documents an institution exposes, grouped into sections, with per-store
// upload flags.
package mevzuat

// ScanItem is one candidate document discovered by a scan. IDs are only
// unique within a section (two sections may reuse numeric ids), so identity
// is always the (section title, id) pair.
type ScanItem struct {
	ID         string `json:"id"`
	Title      string `json:"baslik"`
	Link       string `json:"link"`
	MevzuatGPT bool   `json:"mevzuatgpt"`
	Portal     bool   `json:"portal"`
}

// Section groups items in the order the scan returned them. That order is
// preserved end to end.
type Section struct {
	Title     string     `json:"bolum_adi"`
	ItemCount int        `json:"belge_sayisi"`
	Items     []ScanItem `json:"belgeler"`
}

// SectionStats summarizes one section. Uploaded counts membership in the
// MevzuatGPT store; Uploaded + NotUploaded == Total always holds.
type SectionStats struct {
	Title       string `json:"bolum_adi"`
	Total       int    `json:"toplam"`
	Uploaded    int    `json:"yuklenen"`
	NotUploaded int    `json:"yuklenmeyen"`
}

// ScanResult is the reconciled outcome of one scan. UploadedCount is the
// server's own tally and may legitimately diverge from the sum of the
// locally recomputed section stats.
type ScanResult struct {
	TotalSections int            `json:"toplam_bolum_sayisi"`
	TotalItems    int            `json:"toplam_belge_sayisi"`
	UploadedCount int            `json:"yuklenen_belge_sayisi"`
	Sections      []Section      `json:"bolumler"`
	Stats         []SectionStats `json:"bolum_istatistikleri"`
}

// ItemKey is the composite identity of an item within a scan result.
type ItemKey struct {
	Section string
	ID      string
}

// Find locates an item and its owning section by composite key.
func (r *ScanResult) Find(key ItemKey) (*ScanItem, *Section, bool) {
	for si := range r.Sections {
		sec := &r.Sections[si]
		if sec.Title != key.Section {
			continue
		}
		for ii := range sec.Items {
			if sec.Items[ii].ID == key.ID {
				return &sec.Items[ii], sec, true
			}
		}
	}
	return nil, nil, false
}

// RecomputeStats rebuilds per-section stats and the local totals from the
// item flags. UploadedCount is left as reported by the server.
func (r *ScanResult) RecomputeStats() {
	r.TotalSections = len(r.Sections)
	r.TotalItems = 0
	r.Stats = r.Stats[:0]

	for _, sec := range r.Sections {
		st := SectionStats{Title: sec.Title, Total: len(sec.Items)}
		for _, it := range sec.Items {
			if it.MevzuatGPT {
				st.Uploaded++
			}
		}
		st.NotUploaded = st.Total - st.Uploaded
		r.Stats = append(r.Stats, st)
		r.TotalItems += st.Total
	}
}
