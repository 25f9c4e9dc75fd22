package frameobj

import (
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
)

// AdcData is one ADC channel's payload: name, calibration fields, and its
// owned sample Vector (spec.md §3 "Frame-object": "per-channel payloads
// (ADC, proc, ser, sim)"; field list grounded on FrameCPP's FrAdcData.hh,
// SPEC_FULL.md §3).
type AdcData struct {
	Name        string
	Comment     string
	ChannelGrp  uint32
	ChannelNum  uint32
	SampleRate  float64
	Bias        float64
	Slope       float64
	Units       string
	TimeOffsetS uint32
	TimeOffsetN uint32
	FShift      float64
	Phase       float32
	DataQuality uint16

	Data Ref              // owned Vector payload
	Aux  *SearchContainer // optional auxiliary vectors
}

var _ Object = (*AdcData)(nil)

func (a *AdcData) ClassID() format.ClassID   { return format.ClassFrAdcData }
func (a *AdcData) Description() *Description { return adcDataDescription }

func (a *AdcData) Equal(other Object) bool {
	o, ok := other.(*AdcData)
	if !ok {
		return false
	}

	return a.Name == o.Name && a.Comment == o.Comment && a.ChannelGrp == o.ChannelGrp &&
		a.ChannelNum == o.ChannelNum && a.SampleRate == o.SampleRate && a.Bias == o.Bias &&
		a.Slope == o.Slope && a.Units == o.Units && a.TimeOffsetS == o.TimeOffsetS &&
		a.TimeOffsetN == o.TimeOffsetN && a.FShift == o.FShift && a.Phase == o.Phase &&
		a.DataQuality == o.DataQuality && a.Data.Equal(o.Data) &&
		searchContainerEqual(a.Aux, o.Aux)
}

var adcDataDescription = CacheDescription(NewDescription("FrAdcData", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "comment", Type: format.ElemString},
	{Name: "channelGroup", Type: format.ElemInt4U},
	{Name: "channelNumber", Type: format.ElemInt4U},
	{Name: "sampleRate", Type: format.ElemFloat8},
	{Name: "bias", Type: format.ElemFloat8},
	{Name: "slope", Type: format.ElemFloat8},
	{Name: "units", Type: format.ElemString},
	{Name: "fShift", Type: format.ElemFloat8},
	{Name: "phase", Type: format.ElemFloat4},
	{Name: "dataValid", Type: format.ElemInt2U},
}))

// ProcData is a post-processed channel payload: type/subType tags describe
// what processing produced it, plus one or more owned Vector payloads
// (spec.md §3; grounded on FrameCPP's FrProcData.hh).
type ProcData struct {
	Name        string
	Comment     string
	Type        int16
	SubType     int16
	TimeOffsetS uint32
	TRange      float64
	FShift      float64
	Phase       float32
	BW          float64

	Data   []Ref            // owned Vector payload(s)
	AuxTab *SearchContainer // auxiliary-table reference list
}

var _ Object = (*ProcData)(nil)

func (p *ProcData) ClassID() format.ClassID   { return format.ClassFrProcData }
func (p *ProcData) Description() *Description { return procDataDescription }

func (p *ProcData) Equal(other Object) bool {
	o, ok := other.(*ProcData)
	if !ok {
		return false
	}

	if p.Name != o.Name || p.Comment != o.Comment || p.Type != o.Type || p.SubType != o.SubType ||
		p.TimeOffsetS != o.TimeOffsetS || p.TRange != o.TRange || p.FShift != o.FShift ||
		p.Phase != o.Phase || p.BW != o.BW || len(p.Data) != len(o.Data) {
		return false
	}
	for i := range p.Data {
		if !p.Data[i].Equal(o.Data[i]) {
			return false
		}
	}

	return searchContainerEqual(p.AuxTab, o.AuxTab)
}

var procDataDescription = CacheDescription(NewDescription("FrProcData", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "comment", Type: format.ElemString},
	{Name: "type", Type: format.ElemInt2S},
	{Name: "subType", Type: format.ElemInt2S},
	{Name: "tRange", Type: format.ElemFloat8},
	{Name: "fShift", Type: format.ElemFloat8},
	{Name: "phase", Type: format.ElemFloat4},
	{Name: "BW", Type: format.ElemFloat8},
}))

// SerData is a low-rate serial-data channel payload (spec.md §3; grounded
// on FrameCPP's FrSerData.hh).
type SerData struct {
	Name       string
	TimeS      uint32
	TimeN      uint32
	SampleRate float64

	Data Ref // owned Vector payload
}

var _ Object = (*SerData)(nil)

func (s *SerData) ClassID() format.ClassID   { return format.ClassFrSerData }
func (s *SerData) Description() *Description { return serDataDescription }

func (s *SerData) Equal(other Object) bool {
	o, ok := other.(*SerData)
	return ok && s.Name == o.Name && s.TimeS == o.TimeS && s.TimeN == o.TimeN &&
		s.SampleRate == o.SampleRate && s.Data.Equal(o.Data)
}

var serDataDescription = CacheDescription(NewDescription("FrSerData", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "timeSec", Type: format.ElemInt4U},
	{Name: "timeNsec", Type: format.ElemInt4U},
	{Name: "sampleRate", Type: format.ElemFloat8},
}))

// Merge appends other's sample data in timestamp order, following spec.md
// §4.5 "Merge (frame-level)": "merging two instances of the same name
// appends time samples in timestamp order; overlapping timestamps are an
// error." Serial-data here is single-valued per frame, so a same-name merge
// is only valid when other's timestamp strictly follows s's.
func (s *SerData) Merge(other *SerData) error {
	if s.Name != other.Name {
		return errs.ErrIncompatibleMerge
	}

	if other.TimeS < s.TimeS || (other.TimeS == s.TimeS && other.TimeN <= s.TimeN) {
		return errs.ErrIncompatibleMerge
	}

	s.TimeS, s.TimeN = other.TimeS, other.TimeN
	s.Data = other.Data

	return nil
}

// SimData is a simulated-data channel payload (spec.md §3; grounded on
// FrameCPP's FrSimData.hh).
type SimData struct {
	Name        string
	Comment     string
	SampleRate  float64
	TimeOffsetS uint32
	FShift      float64

	Data Ref // owned Vector payload
}

var _ Object = (*SimData)(nil)

func (s *SimData) ClassID() format.ClassID   { return format.ClassFrSimData }
func (s *SimData) Description() *Description { return simDataDescription }

func (s *SimData) Equal(other Object) bool {
	o, ok := other.(*SimData)
	return ok && s.Name == o.Name && s.Comment == o.Comment && s.SampleRate == o.SampleRate &&
		s.TimeOffsetS == o.TimeOffsetS && s.FShift == o.FShift && s.Data.Equal(o.Data)
}

var simDataDescription = CacheDescription(NewDescription("FrSimData", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "comment", Type: format.ElemString},
	{Name: "sampleRate", Type: format.ElemFloat8},
	{Name: "fShift", Type: format.ElemFloat8},
}))

// Event is a discrete event record (spec.md §3; grounded on FrameCPP's
// FrEvent.hh).
type Event struct {
	Name      string
	Comment   string
	Inputs    string
	GTimeS    uint32
	GTimeN    uint32
	TimeBefore float64
	TimeAfter  float64
	Amplitude  float64
	Probability float64
	Statistics  string

	Params *SearchContainer // owned parameter table
	Data   *SearchContainer // auxiliary-data references
}

var _ Object = (*Event)(nil)

func (e *Event) ClassID() format.ClassID   { return format.ClassFrEvent }
func (e *Event) Description() *Description { return eventDescription }

func (e *Event) Equal(other Object) bool {
	o, ok := other.(*Event)
	if !ok {
		return false
	}

	return e.Name == o.Name && e.Comment == o.Comment && e.Inputs == o.Inputs &&
		e.GTimeS == o.GTimeS && e.GTimeN == o.GTimeN && e.TimeBefore == o.TimeBefore &&
		e.TimeAfter == o.TimeAfter && e.Amplitude == o.Amplitude &&
		e.Probability == o.Probability && e.Statistics == o.Statistics &&
		searchContainerEqual(e.Params, o.Params) && searchContainerEqual(e.Data, o.Data)
}

var eventDescription = CacheDescription(NewDescription("FrEvent", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "comment", Type: format.ElemString},
	{Name: "inputs", Type: format.ElemString},
	{Name: "GTimeS", Type: format.ElemInt4U},
	{Name: "GTimeN", Type: format.ElemInt4U},
	{Name: "timeBefore", Type: format.ElemFloat8},
	{Name: "timeAfter", Type: format.ElemFloat8},
	{Name: "amplitude", Type: format.ElemFloat8},
	{Name: "probability", Type: format.ElemFloat8},
	{Name: "statistics", Type: format.ElemString},
}))

// SimEvent is a simulated event record, structurally identical to Event but
// tagged with its own class-id (spec.md §3; grounded on FrameCPP's
// FrSimEvent.hh).
type SimEvent struct {
	Event
}

var _ Object = (*SimEvent)(nil)

func (e *SimEvent) ClassID() format.ClassID   { return format.ClassFrSimEvent }
func (e *SimEvent) Description() *Description { return simEventDescription }

func (e *SimEvent) Equal(other Object) bool {
	o, ok := other.(*SimEvent)
	return ok && e.Event.Equal(&o.Event)
}

var simEventDescription = CacheDescription(NewDescription("FrSimEvent", format.Current, eventDescription.Fields))

// RawData is the raw-data bundle referenced by a FrameH (spec.md §3;
// grounded on FrameCPP's FrRawData.hh): reference containers for the
// channel kinds and trend lists that belong to one frame.
type RawData struct {
	FirstTrend  *SearchContainer
	SecondTrend *SearchContainer
	Adc         *SearchContainer
	Ser         *SearchContainer
	Table       *SearchContainer
	History     *SearchContainer
}

var _ Object = (*RawData)(nil)

// NewRawData creates a RawData with all reference containers initialized
// empty.
func NewRawData() *RawData {
	return &RawData{
		FirstTrend:  NewSearchContainer(),
		SecondTrend: NewSearchContainer(),
		Adc:         NewSearchContainer(),
		Ser:         NewSearchContainer(),
		Table:       NewSearchContainer(),
		History:     NewSearchContainer(),
	}
}

func (r *RawData) ClassID() format.ClassID   { return format.ClassFrRawData }
func (r *RawData) Description() *Description { return rawDataDescription }

func (r *RawData) Equal(other Object) bool {
	o, ok := other.(*RawData)
	if !ok {
		return false
	}

	return r.FirstTrend.Equal(o.FirstTrend) && r.SecondTrend.Equal(o.SecondTrend) &&
		r.Adc.Equal(o.Adc) && r.Ser.Equal(o.Ser) && r.Table.Equal(o.Table) &&
		r.History.Equal(o.History)
}

var rawDataDescription = CacheDescription(NewDescription("FrRawData", format.Current, nil))

// Detector is a detector descriptor (spec.md §3; grounded on FrameCPP's
// FrDetector.hh).
type Detector struct {
	Name          string
	Prefix        string
	Longitude     float64
	Latitude      float64
	Elevation     float32
	ArmXAzimuth   float32
	ArmYAzimuth   float32
	ArmXMidpoint  float32
	ArmYMidpoint  float32
	LocalTimeOff  int32

	Calibration *SearchContainer // owned calibration vectors
}

var _ Object = (*Detector)(nil)

func (d *Detector) ClassID() format.ClassID   { return format.ClassFrDetector }
func (d *Detector) Description() *Description { return detectorDescription }

func (d *Detector) Equal(other Object) bool {
	o, ok := other.(*Detector)
	if !ok {
		return false
	}

	return d.Name == o.Name && d.Prefix == o.Prefix && d.Longitude == o.Longitude &&
		d.Latitude == o.Latitude && d.Elevation == o.Elevation &&
		d.ArmXAzimuth == o.ArmXAzimuth && d.ArmYAzimuth == o.ArmYAzimuth &&
		d.ArmXMidpoint == o.ArmXMidpoint && d.ArmYMidpoint == o.ArmYMidpoint &&
		d.LocalTimeOff == o.LocalTimeOff && searchContainerEqual(d.Calibration, o.Calibration)
}

var detectorDescription = CacheDescription(NewDescription("FrDetector", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "prefix", Type: format.ElemString},
	{Name: "longitude", Type: format.ElemFloat8},
	{Name: "latitude", Type: format.ElemFloat8},
	{Name: "elevation", Type: format.ElemFloat4},
	{Name: "armXazimuth", Type: format.ElemFloat4},
	{Name: "armYazimuth", Type: format.ElemFloat4},
}))

// History is a provenance entry recording one processing step (spec.md §3;
// grounded on FrameCPP's FrHistory.hh).
type History struct {
	Name    string
	TimeS   uint32
	Comment string
}

var _ Object = (*History)(nil)

func (h *History) ClassID() format.ClassID   { return format.ClassFrHistory }
func (h *History) Description() *Description { return historyDescription }

func (h *History) Equal(other Object) bool {
	o, ok := other.(*History)
	return ok && h.Name == o.Name && h.TimeS == o.TimeS && h.Comment == o.Comment
}

var historyDescription = CacheDescription(NewDescription("FrHistory", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "time", Type: format.ElemInt4U},
	{Name: "comment", Type: format.ElemString},
}))

// Summary is a derived-quantity summary block (spec.md §3; grounded on
// FrameCPP's FrSummary.hh).
type Summary struct {
	Name    string
	Comment string
	Test    Ref // reference to the test/method that produced this summary

	Moments *SearchContainer // owned vector/table references
}

var _ Object = (*Summary)(nil)

func (s *Summary) ClassID() format.ClassID   { return format.ClassFrSummary }
func (s *Summary) Description() *Description { return summaryDescription }

func (s *Summary) Equal(other Object) bool {
	o, ok := other.(*Summary)
	if !ok {
		return false
	}

	return s.Name == o.Name && s.Comment == o.Comment && s.Test.Equal(o.Test) &&
		searchContainerEqual(s.Moments, o.Moments)
}

var summaryDescription = CacheDescription(NewDescription("FrSummary", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "comment", Type: format.ElemString},
}))

// Table is a column-oriented auxiliary table (spec.md §3; grounded on
// FrameCPP's FrTable.hh).
type Table struct {
	Name    string
	Comment string

	Columns *SearchContainer // owned column Vectors
}

var _ Object = (*Table)(nil)

func (t *Table) ClassID() format.ClassID   { return format.ClassFrTable }
func (t *Table) Description() *Description { return tableDescription }

func (t *Table) Equal(other Object) bool {
	o, ok := other.(*Table)
	return ok && t.Name == o.Name && t.Comment == o.Comment &&
		searchContainerEqual(t.Columns, o.Columns)
}

var tableDescription = CacheDescription(NewDescription("FrTable", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "comment", Type: format.ElemString},
}))

func searchContainerEqual(a, b *SearchContainer) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Equal(b)
}
