package beam

import "fmt"

// Record is one raw user input bound to a parameter name, as the dashboard
// collects it: the entered text plus any error messages its field validation
// produced. An empty error list marks the record valid.
type Record struct {
	Name          string
	DefaultValue  string
	ErrorMessages []string
}

// ValidationError reports a record that was marked valid but whose value
// does not parse as a number. It is surfaced instead of letting a bad parse
// crash script generation.
type ValidationError struct {
	Name  string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %s: invalid value %q: %v", e.Name, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConvertRecords turns raw input records into validated parameters.
//
// Records with a non-empty error list are dropped entirely: they get no
// placeholder entry and no default substitution. Output order follows first
// appearance; a duplicate name keeps its first position but takes the last
// valid value. A record marked valid whose text does not parse yields a
// ValidationError.
func ConvertRecords(records []Record) (Params, error) {
	params := make(Params, 0, len(records))
	index := make(map[string]int, len(records))

	for _, rec := range records {
		if len(rec.ErrorMessages) > 0 {
			continue
		}
		val, err := ParseFloat(rec.DefaultValue)
		if err != nil {
			return nil, &ValidationError{Name: rec.Name, Value: rec.DefaultValue, Err: err}
		}
		if i, ok := index[rec.Name]; ok {
			params[i].Value = val
			continue
		}
		index[rec.Name] = len(params)
		params = append(params, Param{Name: rec.Name, Value: val})
	}

	return params, nil
}
