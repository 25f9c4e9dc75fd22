package registry

import (
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/frameobj"
)

// buildVersionTable returns the class dispatch table for one spec version.
//
// The promote/demote callbacks below are identity transformations: this
// model carries one field list per class across the whole [VMin, VMax]
// range rather than per-version field deltas, since SPEC_FULL.md's field
// lists are "intentionally the subset of the real FrameCPP schema needed
// to exercise every reference kind ... not a verbatim transcription" (see
// DESIGN.md's registry entry). The promote/demote chain-walking machinery
// in Promote/Demote is still fully exercised; only the per-class callback
// bodies are simplified.
func buildVersionTable(v format.Version) map[format.ClassID]ClassDescriptor {
	return map[format.ClassID]ClassDescriptor{
		format.ClassFrSH:         frshDescriptor(v),
		format.ClassFrSE:         frseDescriptor(v),
		format.ClassFrameH:       frameHDescriptor(v),
		format.ClassFrRawData:    rawDataDescriptor(v),
		format.ClassFrAdcData:    adcDataDescriptor(v),
		format.ClassFrProcData:   procDataDescriptor(v),
		format.ClassFrSerData:    serDataDescriptor(v),
		format.ClassFrSimData:    simDataDescriptor(v),
		format.ClassFrEvent:      eventDescriptor(v),
		format.ClassFrSimEvent:   simEventDescriptor(v),
		format.ClassFrDetector:   detectorDescriptor(v),
		format.ClassFrHistory:    historyDescriptor(v),
		format.ClassFrSummary:    summaryDescriptor(v),
		format.ClassFrTable:      tableDescriptor(v),
		format.ClassFrVect:       vectorDescriptor(v),
	}
}

// identityPromote and identityDemote implement the simplified promote/
// demote path documented above: they copy the object forward unchanged,
// since there is no per-version field difference to reconcile in this
// model. Reference fields need no remapping either, because the same Go
// object graph is shared across the promoted/demoted view.
func identityPromote(_ *Context, prev frameobj.Object) (frameobj.Object, error) {
	return prev, nil
}

func identityDemote(_ *Context, obj frameobj.Object) (frameobj.Object, error) {
	return obj, nil
}

// withIdentityPromoteDemote sets d's PromoteFromPrevious/DemoteToPrevious
// to the identity callbacks unless v is format.VMin, which has no
// adjacent lower version.
func withIdentityPromoteDemote(d ClassDescriptor, v format.Version) ClassDescriptor {
	if v == format.VMin {
		return d
	}

	d.PromoteFromPrevious = identityPromote
	d.DemoteToPrevious = identityDemote

	return d
}

func frshDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrSH,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.FrSHDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			consumed := len(data) - len(rest)
			if len(rest) < 1 {
				return nil, 0, errUnderrun(ctx)
			}

			return &frameobj.FrSH{Name: name, Version: format.Version(rest[0])}, consumed + 1, nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			s := obj.(*frameobj.FrSH)
			buf = appendString(buf, ctx, s.Name)
			return append(buf, byte(s.Version)), nil
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.FrSH).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func frseDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrSE,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.FrSEDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			if len(rest) < 1 {
				return nil, 0, errUnderrun(ctx)
			}
			typ := format.ElementType(rest[0])
			comment, rest2, err := readString(rest[1:], ctx)
			if err != nil {
				return nil, 0, err
			}
			consumed := len(data) - len(rest2)

			return &frameobj.FrSE{Name: name, Type: typ, Comment: comment}, consumed, nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			s := obj.(*frameobj.FrSE)
			buf = appendString(buf, ctx, s.Name)
			buf = append(buf, byte(s.Type))
			buf = appendString(buf, ctx, s.Comment)
			return buf, nil
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.FrSE).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func frameHDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrameH,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.FrameHDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			f := frameobj.NewFrameH()
			orig := data

			if len(data) < 4+4+4+2+4+8+4 {
				return nil, 0, errUnderrun(ctx)
			}
			f.FrameNum = ctx.Engine.Uint32(data[0:4])
			f.GTimeS = ctx.Engine.Uint32(data[4:8])
			f.GTimeN = ctx.Engine.Uint32(data[8:12])
			f.ULeapS = ctx.Engine.Uint16(data[12:14])
			f.DataQuality = ctx.Engine.Uint32(data[14:18])
			f.Dt = bitsToFloat64(ctx.Engine.Uint64(data[18:26]))
			f.RunNum = int32(ctx.Engine.Uint32(data[26:30]))
			data = data[30:]

			mask := ctx.ElementMask
			if mask == 0 {
				mask = frameobj.MaskAll
			}

			if mask.Has(frameobj.MaskRaw) {
				rest, err := readRef(data, ctx, func(obj frameobj.Object) { f.Raw = frameobj.Ref{Target: obj} })
				if err != nil {
					return nil, 0, err
				}
				data = rest
			} else {
				if len(data) < 6 {
					return nil, 0, errUnderrun(ctx)
				}
				data = data[6:]
			}

			containers := []struct {
				bit frameobj.ElementMask
				sc  **frameobj.SearchContainer
			}{
				{frameobj.MaskProc, &f.Proc},
				{frameobj.MaskSim, &f.Sim},
				{frameobj.MaskEvent, &f.Event},
				{frameobj.MaskSimEvent, &f.SimEvt},
				{frameobj.MaskSummary, &f.Summary},
				{frameobj.MaskHistory, &f.History},
				{frameobj.MaskAux, &f.Aux},
				{frameobj.MaskAuxTab, &f.AuxTab},
				{frameobj.MaskDetector, &f.Detect},
			}

			for _, c := range containers {
				if mask.Has(c.bit) {
					parsed, rest, err := readSearchContainer(data, ctx)
					if err != nil {
						return nil, 0, err
					}
					*c.sc = parsed
					data = rest
					continue
				}

				rest, err := skipSearchContainer(data, ctx)
				if err != nil {
					return nil, 0, err
				}
				*c.sc = nil
				data = rest
			}

			return f, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			f := obj.(*frameobj.FrameH)
			buf = ctx.Engine.AppendUint32(buf, f.FrameNum)
			buf = ctx.Engine.AppendUint32(buf, f.GTimeS)
			buf = ctx.Engine.AppendUint32(buf, f.GTimeN)
			buf = ctx.Engine.AppendUint16(buf, f.ULeapS)
			buf = ctx.Engine.AppendUint32(buf, f.DataQuality)
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(f.Dt))
			buf = ctx.Engine.AppendUint32(buf, uint32(f.RunNum))

			var err error
			buf, err = appendReference(buf, ctx, f.Raw)
			if err != nil {
				return nil, err
			}

			for _, sc := range []*frameobj.SearchContainer{f.Proc, f.Sim, f.Event, f.SimEvt, f.Summary, f.History, f.Aux, f.AuxTab, f.Detect} {
				buf, err = appendSearchContainer(buf, ctx, sc)
				if err != nil {
					return nil, err
				}
			}

			return buf, nil
		},
		Verify: func(obj frameobj.Object) error {
			return nil
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func rawDataDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrRawData,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.RawDataDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			r := frameobj.NewRawData()
			orig := data

			for _, sc := range []**frameobj.SearchContainer{&r.FirstTrend, &r.SecondTrend, &r.Adc, &r.Ser, &r.Table, &r.History} {
				parsed, rest, err := readSearchContainer(data, ctx)
				if err != nil {
					return nil, 0, err
				}
				*sc = parsed
				data = rest
			}

			return r, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			r := obj.(*frameobj.RawData)
			var err error
			for _, sc := range []*frameobj.SearchContainer{r.FirstTrend, r.SecondTrend, r.Adc, r.Ser, r.Table, r.History} {
				buf, err = appendSearchContainer(buf, ctx, sc)
				if err != nil {
					return nil, err
				}
			}

			return buf, nil
		},
		Verify: func(obj frameobj.Object) error { return nil },
	}

	return withIdentityPromoteDemote(d, v)
}

func adcDataDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrAdcData,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.AdcDataDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			orig := data

			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			comment, rest, err := readString(rest, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			if len(data) < 4+4+8+8+8 {
				return nil, 0, errUnderrun(ctx)
			}
			chGrp := ctx.Engine.Uint32(data[0:4])
			chNum := ctx.Engine.Uint32(data[4:8])
			sampleRate := bitsToFloat64(ctx.Engine.Uint64(data[8:16]))
			bias := bitsToFloat64(ctx.Engine.Uint64(data[16:24]))
			slope := bitsToFloat64(ctx.Engine.Uint64(data[24:32]))
			data = data[32:]

			units, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			if len(data) < 4+4+8+4+2 {
				return nil, 0, errUnderrun(ctx)
			}
			timeOffS := ctx.Engine.Uint32(data[0:4])
			timeOffN := ctx.Engine.Uint32(data[4:8])
			fShift := bitsToFloat64(ctx.Engine.Uint64(data[8:16]))
			phase := bitsToFloat32(ctx.Engine.Uint32(data[16:20]))
			dataQuality := ctx.Engine.Uint16(data[20:22])
			data = data[22:]

			adc := &frameobj.AdcData{
				Name: name, Comment: comment, ChannelGrp: chGrp, ChannelNum: chNum,
				SampleRate: sampleRate, Bias: bias, Slope: slope, Units: units,
				TimeOffsetS: timeOffS, TimeOffsetN: timeOffN, FShift: fShift,
				Phase: phase, DataQuality: dataQuality,
			}

			rest, err = readRef(data, ctx, func(obj frameobj.Object) { adc.Data = frameobj.Ref{Target: obj} })
			if err != nil {
				return nil, 0, err
			}
			data = rest

			aux, rest, err := readSearchContainer(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			adc.Aux = aux
			data = rest

			return adc, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			a := obj.(*frameobj.AdcData)
			buf = appendString(buf, ctx, a.Name)
			buf = appendString(buf, ctx, a.Comment)
			buf = ctx.Engine.AppendUint32(buf, a.ChannelGrp)
			buf = ctx.Engine.AppendUint32(buf, a.ChannelNum)
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(a.SampleRate))
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(a.Bias))
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(a.Slope))
			buf = appendString(buf, ctx, a.Units)
			buf = ctx.Engine.AppendUint32(buf, a.TimeOffsetS)
			buf = ctx.Engine.AppendUint32(buf, a.TimeOffsetN)
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(a.FShift))
			buf = ctx.Engine.AppendUint32(buf, float32ToBits(a.Phase))
			buf = ctx.Engine.AppendUint16(buf, a.DataQuality)

			var err error
			buf, err = appendReference(buf, ctx, a.Data)
			if err != nil {
				return nil, err
			}

			return appendSearchContainer(buf, ctx, a.Aux)
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.AdcData).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func procDataDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrProcData,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.ProcDataDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			orig := data
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			comment, rest, err := readString(rest, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			if len(data) < 2+2+4+8+8+4+8 {
				return nil, 0, errUnderrun(ctx)
			}
			typ := int16(ctx.Engine.Uint16(data[0:2]))
			subType := int16(ctx.Engine.Uint16(data[2:4]))
			timeOffsetS := ctx.Engine.Uint32(data[4:8])
			tRange := bitsToFloat64(ctx.Engine.Uint64(data[8:16]))
			fShift := bitsToFloat64(ctx.Engine.Uint64(data[16:24]))
			phase := bitsToFloat32(ctx.Engine.Uint32(data[24:28]))
			bw := bitsToFloat64(ctx.Engine.Uint64(data[28:36]))
			data = data[36:]

			p := &frameobj.ProcData{
				Name: name, Comment: comment, Type: typ, SubType: subType,
				TimeOffsetS: timeOffsetS, TRange: tRange, FShift: fShift, Phase: phase, BW: bw,
			}

			refs, rest, err := readRefSlice(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			p.Data = refs
			data = rest

			auxTab, rest, err := readSearchContainer(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			p.AuxTab = auxTab
			data = rest

			return p, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			p := obj.(*frameobj.ProcData)
			buf = appendString(buf, ctx, p.Name)
			buf = appendString(buf, ctx, p.Comment)
			buf = ctx.Engine.AppendUint16(buf, uint16(p.Type))
			buf = ctx.Engine.AppendUint16(buf, uint16(p.SubType))
			buf = ctx.Engine.AppendUint32(buf, p.TimeOffsetS)
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(p.TRange))
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(p.FShift))
			buf = ctx.Engine.AppendUint32(buf, float32ToBits(p.Phase))
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(p.BW))

			var err error
			buf, err = appendRefSlice(buf, ctx, p.Data)
			if err != nil {
				return nil, err
			}

			return appendSearchContainer(buf, ctx, p.AuxTab)
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.ProcData).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func serDataDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrSerData,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.SerDataDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			orig := data
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			if len(data) < 4+4+8 {
				return nil, 0, errUnderrun(ctx)
			}
			s := &frameobj.SerData{
				Name:       name,
				TimeS:      ctx.Engine.Uint32(data[0:4]),
				TimeN:      ctx.Engine.Uint32(data[4:8]),
				SampleRate: bitsToFloat64(ctx.Engine.Uint64(data[8:16])),
			}
			data = data[16:]

			rest, err = readRef(data, ctx, func(obj frameobj.Object) { s.Data = frameobj.Ref{Target: obj} })
			if err != nil {
				return nil, 0, err
			}
			data = rest

			return s, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			s := obj.(*frameobj.SerData)
			buf = appendString(buf, ctx, s.Name)
			buf = ctx.Engine.AppendUint32(buf, s.TimeS)
			buf = ctx.Engine.AppendUint32(buf, s.TimeN)
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(s.SampleRate))
			return appendReference(buf, ctx, s.Data)
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.SerData).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func simDataDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrSimData,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.SimDataDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			orig := data
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			comment, rest, err := readString(rest, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			if len(data) < 8+4+8 {
				return nil, 0, errUnderrun(ctx)
			}
			s := &frameobj.SimData{
				Name: name, Comment: comment,
				SampleRate:  bitsToFloat64(ctx.Engine.Uint64(data[0:8])),
				TimeOffsetS: ctx.Engine.Uint32(data[8:12]),
				FShift:      bitsToFloat64(ctx.Engine.Uint64(data[12:20])),
			}
			data = data[20:]

			rest, err = readRef(data, ctx, func(obj frameobj.Object) { s.Data = frameobj.Ref{Target: obj} })
			if err != nil {
				return nil, 0, err
			}
			data = rest

			return s, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			s := obj.(*frameobj.SimData)
			buf = appendString(buf, ctx, s.Name)
			buf = appendString(buf, ctx, s.Comment)
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(s.SampleRate))
			buf = ctx.Engine.AppendUint32(buf, s.TimeOffsetS)
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(s.FShift))
			return appendReference(buf, ctx, s.Data)
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.SimData).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func eventDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrEvent,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.EventDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			e, rest, err := decodeEventFields(data, ctx)
			if err != nil {
				return nil, 0, err
			}

			return e, len(data) - len(rest), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			return encodeEventFields(ctx, buf, obj.(*frameobj.Event))
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.Event).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func simEventDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrSimEvent,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.SimEventDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			e, rest, err := decodeEventFields(data, ctx)
			if err != nil {
				return nil, 0, err
			}

			return &frameobj.SimEvent{Event: *e}, len(data) - len(rest), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			return encodeEventFields(ctx, buf, &obj.(*frameobj.SimEvent).Event)
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.SimEvent).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

// decodeEventFields and encodeEventFields are shared by FrEvent and
// FrSimEvent, which carry an identical field list in this model (spec.md
// §3: "SimEvent: structurally identical to Event").
func decodeEventFields(data []byte, ctx *Context) (*frameobj.Event, []byte, error) {
	name, rest, err := readString(data, ctx)
	if err != nil {
		return nil, nil, err
	}
	comment, rest, err := readString(rest, ctx)
	if err != nil {
		return nil, nil, err
	}
	inputs, rest, err := readString(rest, ctx)
	if err != nil {
		return nil, nil, err
	}
	data = rest

	if len(data) < 4+4+8+8+8+8+8 {
		return nil, nil, errUnderrun(ctx)
	}
	e := &frameobj.Event{
		Name: name, Comment: comment, Inputs: inputs,
		GTimeS:      ctx.Engine.Uint32(data[0:4]),
		GTimeN:      ctx.Engine.Uint32(data[4:8]),
		TimeBefore:  bitsToFloat64(ctx.Engine.Uint64(data[8:16])),
		TimeAfter:   bitsToFloat64(ctx.Engine.Uint64(data[16:24])),
		Amplitude:   bitsToFloat64(ctx.Engine.Uint64(data[24:32])),
		Probability: bitsToFloat64(ctx.Engine.Uint64(data[32:40])),
	}
	data = data[40:]

	statistics, rest, err := readString(data, ctx)
	if err != nil {
		return nil, nil, err
	}
	e.Statistics = statistics
	data = rest

	params, rest, err := readSearchContainer(data, ctx)
	if err != nil {
		return nil, nil, err
	}
	e.Params = params
	data = rest

	edata, rest, err := readSearchContainer(data, ctx)
	if err != nil {
		return nil, nil, err
	}
	e.Data = edata
	data = rest

	return e, data, nil
}

func encodeEventFields(ctx *Context, buf []byte, e *frameobj.Event) ([]byte, error) {
	buf = appendString(buf, ctx, e.Name)
	buf = appendString(buf, ctx, e.Comment)
	buf = appendString(buf, ctx, e.Inputs)
	buf = ctx.Engine.AppendUint32(buf, e.GTimeS)
	buf = ctx.Engine.AppendUint32(buf, e.GTimeN)
	buf = ctx.Engine.AppendUint64(buf, float64ToBits(e.TimeBefore))
	buf = ctx.Engine.AppendUint64(buf, float64ToBits(e.TimeAfter))
	buf = ctx.Engine.AppendUint64(buf, float64ToBits(e.Amplitude))
	buf = ctx.Engine.AppendUint64(buf, float64ToBits(e.Probability))
	buf = appendString(buf, ctx, e.Statistics)

	var err error
	buf, err = appendSearchContainer(buf, ctx, e.Params)
	if err != nil {
		return nil, err
	}

	return appendSearchContainer(buf, ctx, e.Data)
}

func detectorDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrDetector,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.DetectorDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			orig := data
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			prefix, rest, err := readString(rest, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			if len(data) < 8+8+4+4+4+4+4+4 {
				return nil, 0, errUnderrun(ctx)
			}
			det := &frameobj.Detector{
				Name: name, Prefix: prefix,
				Longitude:    bitsToFloat64(ctx.Engine.Uint64(data[0:8])),
				Latitude:     bitsToFloat64(ctx.Engine.Uint64(data[8:16])),
				Elevation:    bitsToFloat32(ctx.Engine.Uint32(data[16:20])),
				ArmXAzimuth:  bitsToFloat32(ctx.Engine.Uint32(data[20:24])),
				ArmYAzimuth:  bitsToFloat32(ctx.Engine.Uint32(data[24:28])),
				ArmXMidpoint: bitsToFloat32(ctx.Engine.Uint32(data[28:32])),
				ArmYMidpoint: bitsToFloat32(ctx.Engine.Uint32(data[32:36])),
				LocalTimeOff: int32(ctx.Engine.Uint32(data[36:40])),
			}
			data = data[40:]

			cal, rest, err := readSearchContainer(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			det.Calibration = cal
			data = rest

			return det, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			det := obj.(*frameobj.Detector)
			buf = appendString(buf, ctx, det.Name)
			buf = appendString(buf, ctx, det.Prefix)
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(det.Longitude))
			buf = ctx.Engine.AppendUint64(buf, float64ToBits(det.Latitude))
			buf = ctx.Engine.AppendUint32(buf, float32ToBits(det.Elevation))
			buf = ctx.Engine.AppendUint32(buf, float32ToBits(det.ArmXAzimuth))
			buf = ctx.Engine.AppendUint32(buf, float32ToBits(det.ArmYAzimuth))
			buf = ctx.Engine.AppendUint32(buf, float32ToBits(det.ArmXMidpoint))
			buf = ctx.Engine.AppendUint32(buf, float32ToBits(det.ArmYMidpoint))
			buf = ctx.Engine.AppendUint32(buf, uint32(det.LocalTimeOff))

			return appendSearchContainer(buf, ctx, det.Calibration)
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.Detector).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func historyDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrHistory,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.HistoryDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			orig := data
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			if len(data) < 4 {
				return nil, 0, errUnderrun(ctx)
			}
			timeS := ctx.Engine.Uint32(data[0:4])
			data = data[4:]

			comment, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			return &frameobj.History{Name: name, TimeS: timeS, Comment: comment}, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			h := obj.(*frameobj.History)
			buf = appendString(buf, ctx, h.Name)
			buf = ctx.Engine.AppendUint32(buf, h.TimeS)
			buf = appendString(buf, ctx, h.Comment)
			return buf, nil
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.History).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func summaryDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrSummary,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.SummaryDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			orig := data
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			comment, rest, err := readString(rest, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			s := &frameobj.Summary{Name: name, Comment: comment}

			rest, err = readRef(data, ctx, func(obj frameobj.Object) { s.Test = frameobj.Ref{Target: obj} })
			if err != nil {
				return nil, 0, err
			}
			data = rest

			moments, rest, err := readSearchContainer(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			s.Moments = moments
			data = rest

			return s, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			s := obj.(*frameobj.Summary)
			buf = appendString(buf, ctx, s.Name)
			buf = appendString(buf, ctx, s.Comment)

			var err error
			buf, err = appendReference(buf, ctx, s.Test)
			if err != nil {
				return nil, err
			}

			return appendSearchContainer(buf, ctx, s.Moments)
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.Summary).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func tableDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrTable,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.TableDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			orig := data
			name, rest, err := readString(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			comment, rest, err := readString(rest, ctx)
			if err != nil {
				return nil, 0, err
			}
			data = rest

			t := &frameobj.Table{Name: name, Comment: comment}

			cols, rest, err := readSearchContainer(data, ctx)
			if err != nil {
				return nil, 0, err
			}
			t.Columns = cols
			data = rest

			return t, len(orig) - len(data), nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			t := obj.(*frameobj.Table)
			buf = appendString(buf, ctx, t.Name)
			buf = appendString(buf, ctx, t.Comment)
			return appendSearchContainer(buf, ctx, t.Columns)
		},
		Verify: func(obj frameobj.Object) error {
			return requireNonEmpty(obj.(*frameobj.Table).Name)
		},
	}

	return withIdentityPromoteDemote(d, v)
}

func vectorDescriptor(v format.Version) ClassDescriptor {
	d := ClassDescriptor{
		ClassID:  format.ClassFrVect,
		Version:  v,
		Describe: func() *frameobj.Description { return frameobj.VectorDescription() },
		Decode: func(ctx *Context, data []byte) (frameobj.Object, int, error) {
			vec, n, err := frameobj.DecodeVectorBody(data, ctx.Engine)
			if err != nil {
				return nil, 0, err
			}

			return vec, n, nil
		},
		Encode: func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error) {
			return obj.(*frameobj.Vector).EncodeBody(buf, ctx.Engine)
		},
		Verify: func(obj frameobj.Object) error {
			return obj.(*frameobj.Vector).Validate()
		},
	}

	return withIdentityPromoteDemote(d, v)
}
