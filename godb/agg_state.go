package godb

// AggState accumulates one aggregate (COUNT/SUM/AVG/MIN/MAX) over a stream
// of tuples and finalizes it into a single-field result tuple.
//
// Grounded on the teacher's agg_state.go for the interface shape
// (Init/Copy/AddTuple/Finalize/GetTupleDesc) and the per-op state structs;
// Init takes a plain aggField index instead of the teacher's Expr, for the
// same reason as the other operators (see DESIGN.md). Two teacher bugs are
// avoided here: the teacher's AvgAggState.AddTuple divided by count before
// incrementing it, and its stringAggGetter helper (not carried over)
// type-asserted IntField on string values; CountAggState never reads the
// field value, so COUNT over a string column works.
type AggState interface {
	Init(alias string, aggField int) error
	Copy() AggState
	AddTuple(*Tuple)
	Finalize() *Tuple
	GetTupleDesc() *TupleDesc
}

// CountAggState implements COUNT. Valid for both int and string fields.
type CountAggState struct {
	alias    string
	aggField int
	count    int32
}

func (a *CountAggState) Copy() AggState {
	return &CountAggState{a.alias, a.aggField, a.count}
}

func (a *CountAggState) Init(alias string, aggField int) error {
	a.alias = alias
	a.aggField = aggField
	a.count = 0
	return nil
}

func (a *CountAggState) AddTuple(t *Tuple) {
	a.count++
}

func (a *CountAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: IntType}}}
}

func (a *CountAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{IntField{Value: a.count}}}
}

// SumAggState implements SUM over an integer field.
type SumAggState struct {
	alias    string
	aggField int
	sum      int32
}

func (a *SumAggState) Copy() AggState {
	return &SumAggState{a.alias, a.aggField, a.sum}
}

func (a *SumAggState) Init(alias string, aggField int) error {
	a.alias = alias
	a.aggField = aggField
	a.sum = 0
	return nil
}

func (a *SumAggState) AddTuple(t *Tuple) {
	v := t.Fields[a.aggField].(IntField)
	a.sum += v.Value
}

func (a *SumAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: IntType}}}
}

func (a *SumAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{IntField{Value: a.sum}}}
}

// AvgAggState implements AVG over an integer field as sum/count with Go
// integer division (truncation toward zero), per spec.md section 4.6.
type AvgAggState struct {
	alias    string
	aggField int
	count    int32
	sum      int32
}

func (a *AvgAggState) Copy() AggState {
	return &AvgAggState{a.alias, a.aggField, a.count, a.sum}
}

func (a *AvgAggState) Init(alias string, aggField int) error {
	a.alias = alias
	a.aggField = aggField
	a.count = 0
	a.sum = 0
	return nil
}

func (a *AvgAggState) AddTuple(t *Tuple) {
	v := t.Fields[a.aggField].(IntField)
	a.sum += v.Value
	a.count++
}

func (a *AvgAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: IntType}}}
}

func (a *AvgAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{IntField{Value: a.sum / a.count}}}
}

// MaxAggState implements MAX over an integer field.
type MaxAggState struct {
	alias    string
	aggField int
	maximum  DBValue
}

func (a *MaxAggState) Copy() AggState {
	return &MaxAggState{a.alias, a.aggField, a.maximum}
}

func (a *MaxAggState) Init(alias string, aggField int) error {
	a.alias = alias
	a.aggField = aggField
	a.maximum = nil
	return nil
}

func (a *MaxAggState) AddTuple(t *Tuple) {
	v := t.Fields[a.aggField]
	if a.maximum == nil || v.EvalPred(a.maximum, OpGt) {
		a.maximum = v
	}
}

func (a *MaxAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: IntType}}}
}

func (a *MaxAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{a.maximum}}
}

// MinAggState implements MIN over an integer field.
type MinAggState struct {
	alias    string
	aggField int
	minimum  DBValue
}

func (a *MinAggState) Copy() AggState {
	return &MinAggState{a.alias, a.aggField, a.minimum}
}

func (a *MinAggState) Init(alias string, aggField int) error {
	a.alias = alias
	a.aggField = aggField
	a.minimum = nil
	return nil
}

func (a *MinAggState) AddTuple(t *Tuple) {
	v := t.Fields[a.aggField]
	if a.minimum == nil || v.EvalPred(a.minimum, OpLt) {
		a.minimum = v
	}
}

func (a *MinAggState) GetTupleDesc() *TupleDesc {
	return &TupleDesc{Fields: []FieldType{{Fname: a.alias, Ftype: IntType}}}
}

func (a *MinAggState) Finalize() *Tuple {
	return &Tuple{Desc: *a.GetTupleDesc(), Fields: []DBValue{a.minimum}}
}
