// Package dataset loads NetCDF model output files fully into memory.
//
// A Dataset is a detached snapshot: Open reads every variable and the global
// attributes, then closes the underlying file before returning.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

var (
	// ErrMissingVariable is returned when a requested variable is not in the dataset
	ErrMissingVariable = errors.New("variable not found in dataset")

	// ErrMissingAttribute is returned when a requested attribute is not in the dataset
	ErrMissingAttribute = errors.New("attribute not found in dataset")

	// ErrUnsupportedType is returned when a variable or attribute is not numeric
	ErrUnsupportedType = errors.New("unsupported value type")
)

// Variable is one in-memory NetCDF variable
type Variable struct {
	Dimensions []string
	Attributes map[string]interface{}
	Values     interface{}
}

// Dataset is an in-memory copy of a NetCDF file
type Dataset struct {
	Path       string
	Attributes map[string]interface{}

	names     []string
	variables map[string]Variable
}

// New returns an empty dataset, used to assemble files for Write
func New() *Dataset {
	return &Dataset{
		Attributes: make(map[string]interface{}),
		variables:  make(map[string]Variable),
	}
}

// Open loads every variable and global attribute from a NetCDF file. The file is
// closed before Open returns, on success and on failure.
func Open(path string) (*Dataset, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset %s: %w", path, err)
	}
	defer nc.Close()

	ds := New()
	ds.Path = path
	ds.Attributes = attributeMap(nc.Attributes())

	for _, name := range nc.ListVariables() {
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("error reading variable %s from %s: %w", name, path, err)
		}
		ds.SetVariable(name, v.Dimensions, v.Values, attributeMap(v.Attributes))
	}

	return ds, nil
}

func attributeMap(am api.AttributeMap) map[string]interface{} {
	out := make(map[string]interface{})
	if am == nil {
		return out
	}
	for _, k := range am.Keys() {
		if v, ok := am.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// SetVariable adds or replaces a variable
func (ds *Dataset) SetVariable(name string, dims []string, values interface{}, attrs map[string]interface{}) {
	if _, exists := ds.variables[name]; !exists {
		ds.names = append(ds.names, name)
	}
	if attrs == nil {
		attrs = make(map[string]interface{})
	}
	ds.variables[name] = Variable{
		Dimensions: dims,
		Attributes: attrs,
		Values:     values,
	}
}

// Variables returns the variable names in file order
func (ds *Dataset) Variables() []string {
	return append([]string(nil), ds.names...)
}

// Has reports whether the dataset contains a variable
func (ds *Dataset) Has(name string) bool {
	_, ok := ds.variables[name]
	return ok
}

// Variable returns a variable by name
func (ds *Dataset) Variable(name string) (Variable, error) {
	v, ok := ds.variables[name]
	if !ok {
		return Variable{}, fmt.Errorf("%w: %s", ErrMissingVariable, name)
	}
	return v, nil
}

// Len returns the number of values held by a variable
func (ds *Dataset) Len(name string) (int, error) {
	vals, err := ds.Float64s(name)
	if err != nil {
		return 0, err
	}
	return len(vals), nil
}

// Float64s returns a copy of a numeric variable's values as float64
func (ds *Dataset) Float64s(name string) ([]float64, error) {
	v, err := ds.Variable(name)
	if err != nil {
		return nil, err
	}
	out, err := toFloat64s(v.Values)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	return out, nil
}

// Ints returns a numeric variable's values rounded to int
func (ds *Dataset) Ints(name string) ([]int, error) {
	f, err := ds.Float64s(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(f))
	for i, x := range f {
		out[i] = int(math.Round(x))
	}
	return out, nil
}

// AttrFloat returns a numeric global attribute
func (ds *Dataset) AttrFloat(name string) (float64, error) {
	v, ok := ds.Attributes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}
	f, err := toFloat64s(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	if len(f) == 0 {
		return 0, fmt.Errorf("attribute %s: %w", name, ErrMissingAttribute)
	}
	return f[0], nil
}

// VarAttrString returns a string attribute of a variable, such as "units"
func (ds *Dataset) VarAttrString(varName, attr string) (string, error) {
	v, err := ds.Variable(varName)
	if err != nil {
		return "", err
	}
	raw, ok := v.Attributes[attr]
	if !ok {
		return "", fmt.Errorf("%w: %s:%s", ErrMissingAttribute, varName, attr)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("attribute %s:%s: %w %T", varName, attr, ErrUnsupportedType, raw)
	}
	return s, nil
}

func toFloat64s(values interface{}) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		return append([]float64(nil), v...), nil
	case []float32:
		return convert(v), nil
	case []int8:
		return convert(v), nil
	case []int16:
		return convert(v), nil
	case []int32:
		return convert(v), nil
	case []int64:
		return convert(v), nil
	case []uint8:
		return convert(v), nil
	case []uint16:
		return convert(v), nil
	case []uint32:
		return convert(v), nil
	case []uint64:
		return convert(v), nil
	case float64:
		return []float64{v}, nil
	case float32:
		return []float64{float64(v)}, nil
	case int8:
		return []float64{float64(v)}, nil
	case int16:
		return []float64{float64(v)}, nil
	case int32:
		return []float64{float64(v)}, nil
	case int64:
		return []float64{float64(v)}, nil
	case int:
		return []float64{float64(v)}, nil
	default:
		return nil, fmt.Errorf("%w %T", ErrUnsupportedType, values)
	}
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32
}

func convert[T number](in []T) []float64 {
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = float64(x)
	}
	return out
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
