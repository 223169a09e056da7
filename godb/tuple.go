package godb

// This file defines the tuple model: DBType, FieldType, TupleDesc, DBValue,
// and Tuple, plus (de)serialization to the wire format heap pages use.
//
// Grounded on the teacher's tuple.go; field widths, endianness, and
// RecordID's shape are changed to match spec.md section 6 exactly (32-bit
// big-endian ints, length-prefixed strings, a RecordID{PageID,Slot} struct
// rather than a parsed "pageNo-slot" string).

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// DBType is the type tag of a tuple field.
type DBType int

const (
	IntType DBType = iota
	StringType
	UnknownType // used internally during parsing, when the type is not yet known
)

func (t DBType) String() string {
	switch t {
	case IntType:
		return "int"
	case StringType:
		return "string"
	}
	return "unknown"
}

// width returns the fixed on-disk byte width of a field of this type.
func (t DBType) width() int {
	switch t {
	case IntType:
		return 4
	case StringType:
		return 4 + StringLength
	}
	return 0
}

// FieldType names one column of a TupleDesc: its name, owning table
// qualifier (may be empty), and type.
type FieldType struct {
	Fname          string
	TableQualifier string
	Ftype          DBType
}

// TupleDesc is the schema of a tuple: an ordered, non-empty sequence of
// fields.
type TupleDesc struct {
	Fields []FieldType
}

// width is the serialized byte length of a tuple with this descriptor.
func (td *TupleDesc) width() int {
	w := 0
	for _, f := range td.Fields {
		w += f.Ftype.width()
	}
	return w
}

// equals reports whether two descriptors have the same length and the same
// type at every position. Names are informational and not compared.
func (td *TupleDesc) equals(other *TupleDesc) bool {
	if len(td.Fields) != len(other.Fields) {
		return false
	}
	for i := range td.Fields {
		if td.Fields[i].Ftype != other.Fields[i].Ftype {
			return false
		}
	}
	return true
}

// findFieldInTd finds the best matching field in desc for field, preferring
// a match on TableQualifier when field specifies one. Idiosyncratic parser
// support, kept verbatim from the teacher.
func findFieldInTd(field FieldType, desc *TupleDesc) (int, error) {
	best := -1
	for i, f := range desc.Fields {
		if f.Fname == field.Fname && (f.Ftype == field.Ftype || field.Ftype == UnknownType) {
			if field.TableQualifier == "" && best != -1 {
				return 0, newErr(DbError, "select name %s is ambiguous", f.Fname)
			}
			if f.TableQualifier == field.TableQualifier || best == -1 {
				best = i
			}
		}
	}
	if best != -1 {
		return best, nil
	}
	return -1, newErr(NoSuchElementError, "field %s.%s not found", field.TableQualifier, field.Fname)
}

// copy makes a shallow copy of the field slice (assigning a slice in Go does
// not copy its backing array).
func (td *TupleDesc) copy() *TupleDesc {
	fields := make([]FieldType, len(td.Fields))
	copy(fields, td.Fields)
	return &TupleDesc{Fields: fields}
}

// setTableAlias returns a copy of td with every field's TableQualifier set
// to alias.
func (td *TupleDesc) setTableAlias(alias string) *TupleDesc {
	fields := make([]FieldType, len(td.Fields))
	copy(fields, td.Fields)
	for i := range fields {
		fields[i].TableQualifier = alias
	}
	return &TupleDesc{Fields: fields}
}

// merge concatenates the fields of desc2 onto the fields of td.
func (td *TupleDesc) merge(desc2 *TupleDesc) *TupleDesc {
	fields := make([]FieldType, 0, len(td.Fields)+len(desc2.Fields))
	fields = append(fields, td.Fields...)
	fields = append(fields, desc2.Fields...)
	return &TupleDesc{Fields: fields}
}

// ================== Tuple values ======================

// DBValue is a value drawn from the closed field-value domain. Comparison is
// dispatched on the dynamic type rather than through open inheritance.
type DBValue interface {
	EvalPred(v DBValue, op BoolOp) bool
}

// IntField is a 32-bit signed integer value.
type IntField struct {
	Value int32
}

// StringField is a fixed-maximum-length UTF-8 string value.
type StringField struct {
	Value string
}

func (f IntField) EvalPred(v DBValue, op BoolOp) bool {
	other, ok := v.(IntField)
	if !ok {
		return false
	}
	switch op {
	case OpEq:
		return f.Value == other.Value
	case OpNe:
		return f.Value != other.Value
	case OpLt:
		return f.Value < other.Value
	case OpLe:
		return f.Value <= other.Value
	case OpGt:
		return f.Value > other.Value
	case OpGe:
		return f.Value >= other.Value
	}
	return false
}

func (f StringField) EvalPred(v DBValue, op BoolOp) bool {
	other, ok := v.(StringField)
	if !ok {
		return false
	}
	switch op {
	case OpEq:
		return f.Value == other.Value
	case OpNe:
		return f.Value != other.Value
	case OpLt:
		return f.Value < other.Value
	case OpLe:
		return f.Value <= other.Value
	case OpGt:
		return f.Value > other.Value
	case OpGe:
		return f.Value >= other.Value
	case OpLike:
		return strings.Contains(f.Value, other.Value)
	}
	return false
}

// Tuple is a descriptor plus its ordered field values, plus the RecordID the
// storage layer stamped onto it when it was materialized from a page.
type Tuple struct {
	Desc   TupleDesc
	Fields []DBValue
	Rid    *RecordID
}

// writeTo serializes the tuple's fields, in descriptor order, in the wire
// format from spec.md section 6: ints as 32-bit big-endian, strings as a
// 32-bit big-endian length prefix followed by StringLength zero-padded
// bytes.
func (t *Tuple) writeTo(b *bytes.Buffer) error {
	for _, field := range t.Fields {
		switch v := field.(type) {
		case IntField:
			if err := binary.Write(b, binary.BigEndian, v.Value); err != nil {
				return err
			}
		case StringField:
			raw := []byte(v.Value)
			if len(raw) > StringLength {
				raw = raw[:StringLength]
			}
			if err := binary.Write(b, binary.BigEndian, int32(len(raw))); err != nil {
				return err
			}
			padded := make([]byte, StringLength)
			copy(padded, raw)
			if _, err := b.Write(padded); err != nil {
				return err
			}
		default:
			return newErr(CorruptError, "unsupported field type %T", field)
		}
	}
	return nil
}

// readTupleFrom deserializes a tuple with the supplied descriptor from b.
func readTupleFrom(b *bytes.Buffer, desc *TupleDesc) (*Tuple, error) {
	tuple := &Tuple{Desc: *desc}
	for _, fd := range desc.Fields {
		switch fd.Ftype {
		case IntType:
			var v int32
			if err := binary.Read(b, binary.BigEndian, &v); err != nil {
				return nil, newErr(IoError, "reading int field: %v", err)
			}
			tuple.Fields = append(tuple.Fields, IntField{Value: v})
		case StringType:
			var n int32
			if err := binary.Read(b, binary.BigEndian, &n); err != nil {
				return nil, newErr(IoError, "reading string length: %v", err)
			}
			raw := make([]byte, StringLength)
			if _, err := b.Read(raw); err != nil {
				return nil, newErr(IoError, "reading string bytes: %v", err)
			}
			if int(n) > len(raw) {
				n = int32(len(raw))
			}
			tuple.Fields = append(tuple.Fields, StringField{Value: string(raw[:n])})
		default:
			return nil, newErr(CorruptError, "unknown field type %v", fd.Ftype)
		}
	}
	return tuple, nil
}

// equals compares two tuples field-wise and by descriptor; Rid is not part
// of equality.
func (t1 *Tuple) equals(t2 *Tuple) bool {
	if t1 == nil || t2 == nil {
		return t1 == t2
	}
	if !t1.Desc.equals(&t2.Desc) || len(t1.Fields) != len(t2.Fields) {
		return false
	}
	for i := range t1.Fields {
		if t1.Fields[i] != t2.Fields[i] {
			return false
		}
	}
	return true
}

// joinTuples concatenates t2's fields onto t1, merging their descriptors.
func joinTuples(t1 *Tuple, t2 *Tuple) *Tuple {
	if t1 == nil {
		return t2
	}
	if t2 == nil {
		return t1
	}
	return &Tuple{
		Desc:   *t1.Desc.merge(&t2.Desc),
		Fields: append(append([]DBValue{}, t1.Fields...), t2.Fields...),
	}
}

type orderByState int

const (
	OrderedLessThan orderByState = iota
	OrderedEqual
	OrderedGreaterThan
)

// compareFields orders two values of the same underlying type.
func compareFields(val1, val2 DBValue) (orderByState, error) {
	switch v1 := val1.(type) {
	case IntField:
		v2, ok := val2.(IntField)
		if !ok {
			return OrderedEqual, newErr(CorruptError, "cannot compare %T with %T", val1, val2)
		}
		switch {
		case v1.Value < v2.Value:
			return OrderedLessThan, nil
		case v1.Value > v2.Value:
			return OrderedGreaterThan, nil
		default:
			return OrderedEqual, nil
		}
	case StringField:
		v2, ok := val2.(StringField)
		if !ok {
			return OrderedEqual, newErr(CorruptError, "cannot compare %T with %T", val1, val2)
		}
		switch {
		case v1.Value < v2.Value:
			return OrderedLessThan, nil
		case v1.Value > v2.Value:
			return OrderedGreaterThan, nil
		default:
			return OrderedEqual, nil
		}
	}
	return OrderedEqual, newErr(CorruptError, "unsupported field comparison type %T", val1)
}

// project returns a new tuple containing only the named fields, preferring a
// match on TableQualifier when the tuple has more than one field of that
// name.
func (t *Tuple) project(fields []FieldType) (*Tuple, error) {
	out := &Tuple{Desc: TupleDesc{}, Fields: []DBValue{}}
	for _, field := range fields {
		idx := -1
		for i, df := range t.Desc.Fields {
			if df.Fname == field.Fname && df.TableQualifier == field.TableQualifier {
				idx = i
				break
			}
		}
		if idx == -1 {
			for i, df := range t.Desc.Fields {
				if df.Fname == field.Fname {
					idx = i
					break
				}
			}
		}
		if idx == -1 {
			return nil, newErr(NoSuchElementError, "field %s.%s not found", field.TableQualifier, field.Fname)
		}
		out.Fields = append(out.Fields, t.Fields[idx])
		out.Desc.Fields = append(out.Desc.Fields, t.Desc.Fields[idx])
	}
	return out, nil
}

// tupleKey computes a comparable key for use as a map key (e.g., for
// DISTINCT projection).
func (t *Tuple) tupleKey() any {
	var buf bytes.Buffer
	t.writeTo(&buf)
	return buf.String()
}

var winWidth int = 120

func fmtCol(v string, ncols int) string {
	colWid := winWidth / ncols
	nextLen := len(v) + 3
	remLen := colWid - nextLen
	if remLen > 0 {
		spacesRight := remLen / 2
		spacesLeft := remLen - spacesRight
		return strings.Repeat(" ", spacesLeft) + v + strings.Repeat(" ", spacesRight) + " |"
	}
	if colWid-4 < 0 || colWid-4 > len(v) {
		return " " + v + " |"
	}
	return " " + v[0:colWid-4] + " |"
}

// HeaderString renders a table header for a tuple with this descriptor.
func (td *TupleDesc) HeaderString(aligned bool) string {
	outstr := ""
	for i, f := range td.Fields {
		tableName := ""
		if f.TableQualifier != "" {
			tableName = f.TableQualifier + "."
		}
		if aligned {
			outstr = fmt.Sprintf("%s %s", outstr, fmtCol(tableName+f.Fname, len(td.Fields)))
		} else {
			sep := ","
			if i == 0 {
				sep = ""
			}
			outstr = fmt.Sprintf("%s%s%s", outstr, sep, tableName+f.Fname)
		}
	}
	return outstr
}

// PrettyPrintString renders the tuple's values.
func (t *Tuple) PrettyPrintString(aligned bool) string {
	outstr := ""
	for i, f := range t.Fields {
		str := ""
		switch fv := f.(type) {
		case IntField:
			str = strconv.FormatInt(int64(fv.Value), 10)
		case StringField:
			str = fv.Value
		}
		if aligned {
			outstr = fmt.Sprintf("%s %s", outstr, fmtCol(str, len(t.Fields)))
		} else {
			sep := ","
			if i == 0 {
				sep = ""
			}
			outstr = fmt.Sprintf("%s%s%s", outstr, sep, str)
		}
	}
	return outstr
}
