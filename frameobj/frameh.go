package frameobj

import "github.com/gwframe/frame/format"

// FrameH is the top-of-frame container (spec.md §3 "Frame-object": "a frame
// header (top-of-frame container)"), field list grounded on FrameCPP's
// Version8/impl/FrameHData.hh template parameter list (SPEC_FULL.md §3).
type FrameH struct {
	FrameNum     uint32
	GTimeS       uint32
	GTimeN       uint32
	ULeapS       uint16
	DataQuality  uint32
	Dt           float64
	RunNum       int32

	Raw     Ref              // single reference: RawData bundle
	Proc    *SearchContainer // ProcData channels
	Sim     *SearchContainer // SimData channels
	Event   *SearchContainer // Event records
	SimEvt  *SearchContainer // SimEvent records
	Summary *SearchContainer // Summary blocks
	History *SearchContainer // History entries
	Aux     *SearchContainer // auxiliary vectors
	AuxTab  *SearchContainer // auxiliary tables
	Detect  *SearchContainer // Detector descriptors (proc and sim)
}

var _ Object = (*FrameH)(nil)

// NewFrameH creates a FrameH with all reference containers initialized
// empty, ready for Add calls.
func NewFrameH() *FrameH {
	return &FrameH{
		Proc:    NewSearchContainer(),
		Sim:     NewSearchContainer(),
		Event:   NewSearchContainer(),
		SimEvt:  NewSearchContainer(),
		Summary: NewSearchContainer(),
		History: NewSearchContainer(),
		Aux:     NewSearchContainer(),
		AuxTab:  NewSearchContainer(),
		Detect:  NewSearchContainer(),
	}
}

func (f *FrameH) ClassID() format.ClassID   { return format.ClassFrameH }
func (f *FrameH) Description() *Description { return frameHDescription }

func (f *FrameH) Equal(other Object) bool {
	o, ok := other.(*FrameH)
	if !ok {
		return false
	}

	return f.FrameNum == o.FrameNum && f.GTimeS == o.GTimeS && f.GTimeN == o.GTimeN &&
		f.ULeapS == o.ULeapS && f.DataQuality == o.DataQuality && f.Dt == o.Dt &&
		f.RunNum == o.RunNum &&
		f.Raw.Equal(o.Raw) &&
		f.Proc.Equal(o.Proc) && f.Sim.Equal(o.Sim) && f.Event.Equal(o.Event) &&
		f.SimEvt.Equal(o.SimEvt) && f.Summary.Equal(o.Summary) &&
		f.History.Equal(o.History) && f.Aux.Equal(o.Aux) && f.AuxTab.Equal(o.AuxTab) &&
		f.Detect.Equal(o.Detect)
}

var frameHDescription = CacheDescription(NewDescription("FrameH", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "run", Type: format.ElemInt4S},
	{Name: "frame", Type: format.ElemInt4U},
	{Name: "dataQuality", Type: format.ElemInt4U},
	{Name: "GTimeS", Type: format.ElemInt4U},
	{Name: "GTimeN", Type: format.ElemInt4U},
	{Name: "ULeapS", Type: format.ElemInt2U},
	{Name: "dt", Type: format.ElemFloat8},
}))

// ElementMask selects which of FrameH's optional sub-references a TOC query
// should chase when decoding (spec.md §4.3 "Query API": "read_frame_h
// (frame_index, element_mask)"). Unselected bits short-circuit the resolver
// entry before it is ever queued (spec.md §9 Open Question (a), see
// DESIGN.md).
type ElementMask uint16

const (
	MaskRaw ElementMask = 1 << iota
	MaskProc
	MaskSim
	MaskEvent
	MaskSimEvent
	MaskSummary
	MaskHistory
	MaskAux
	MaskAuxTab
	MaskDetector

	MaskAll ElementMask = MaskRaw | MaskProc | MaskSim | MaskEvent | MaskSimEvent |
		MaskSummary | MaskHistory | MaskAux | MaskAuxTab | MaskDetector
)

// Has reports whether mask selects bit.
func (mask ElementMask) Has(bit ElementMask) bool {
	return mask&bit != 0
}
