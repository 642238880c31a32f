package domain

// ECRecord is an elliptic curve over Q together with the Galois image tags
// that point back into the modular curve collection.
type ECRecord struct {
	Label      string       `json:"label"`
	LMFDBLabel string       `json:"lmfdb_label"`
	LMFDBIso   string       `json:"lmfdb_iso,omitempty"`
	Conductor  int64        `json:"conductor"`
	IsoNLabel  int          `json:"iso_nlabel"`
	Number     int          `json:"number"`
	Ainvs      [5]int64     `json:"ainvs"`
	CM         int          `json:"cm"`
	JInv       string       `json:"jinv"`
	JFactors   []PrimePower `json:"jinv_factors,omitempty"`
	ModmImages []string     `json:"modm_images,omitempty"`
	TraceHash  int64        `json:"trace_hash,omitempty"`
}

// DocumentLabel implements Document.
func (e ECRecord) DocumentLabel() string { return e.LMFDBLabel }

// Field implements Document.
func (e ECRecord) Field(name string) (any, bool) {
	switch name {
	case "label":
		return e.Label, true
	case "lmfdb_label":
		return e.LMFDBLabel, true
	case "lmfdb_iso":
		return e.LMFDBIso, true
	case "conductor":
		return e.Conductor, true
	case "iso_nlabel":
		return e.IsoNLabel, true
	case "number":
		return e.Number, true
	case "cm":
		return e.CM, true
	case "jinv":
		return e.JInv, true
	case "modm_images":
		return e.ModmImages, true
	case "trace_hash":
		return e.TraceHash, true
	}
	return nil, false
}

// Clone returns a deep copy.
func (e ECRecord) Clone() ECRecord {
	out := e
	out.JFactors = append([]PrimePower(nil), e.JFactors...)
	out.ModmImages = append([]string(nil), e.ModmImages...)
	return out
}

// NFCurveRecord is an elliptic curve over a number field.
type NFCurveRecord struct {
	Label         string   `json:"label"`
	FieldLabel    string   `json:"field_label"`
	Degree        int      `json:"degree"`
	ConductorNorm int64    `json:"conductor_norm"`
	CM            int      `json:"cm"`
	JInv          string   `json:"jinv"`
	GaloisImages  []string `json:"galois_images,omitempty"`
}

// DocumentLabel implements Document.
func (n NFCurveRecord) DocumentLabel() string { return n.Label }

// Field implements Document.
func (n NFCurveRecord) Field(name string) (any, bool) {
	switch name {
	case "label":
		return n.Label, true
	case "field_label":
		return n.FieldLabel, true
	case "degree":
		return n.Degree, true
	case "conductor_norm":
		return n.ConductorNorm, true
	case "cm":
		return n.CM, true
	case "jinv":
		return n.JInv, true
	case "galois_images":
		return n.GaloisImages, true
	}
	return nil, false
}

// Clone returns a deep copy.
func (n NFCurveRecord) Clone() NFCurveRecord {
	out := n
	out.GaloisImages = append([]string(nil), n.GaloisImages...)
	return out
}
