package models

import (
	"database/sql"
	"fmt"
	"reflect"
)

type Model interface {
	TableName() string
	GetID() int64
	EmptySlice() interface{}
}

// GetValsFromModel returns the writable field values of a model as a slice of
// interfaces, in the order of the model's column names. It is used for
// extracting values from the model and writing them to the database. Validation
// of the model should be done before use.
func GetValsFromModel(m Model) []interface{} {
	val := reflect.ValueOf(m)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	vals := make([]interface{}, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if skipColumn(field, true) {
			continue
		}
		vals = append(vals, val.Field(i).Interface())
	}
	return vals
}

// ScanRowToModel scans a single SQL row into a given model. It takes a model
// and passes a slice of pointers to the model's fields to the sql.Row's Scan
// method. It returns an error if the scan fails or the model is not a pointer.
// The row's columns must be selected in GetColumnNames(m, false) order.
func ScanRowToModel(m Model, r *sql.Row) error {
	val := reflect.ValueOf(m)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("expected pointer to model, got %T", m)
	}
	return r.Scan(fieldPointers(val.Elem())...)
}

// ScanRowsToSliceOfModels scans every row into a fresh slice obtained from
// m.EmptySlice and returns that slice (as a pointer to slice).
func ScanRowsToSliceOfModels(m Model, rows *sql.Rows, expectedRows int) (interface{}, error) {
	modelsSlice := m.EmptySlice()

	sliceVal := reflect.ValueOf(modelsSlice).Elem()
	if sliceVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected slice, got %s", sliceVal.Kind())
	}
	elemType := sliceVal.Type().Elem()

	sliceVal.Set(reflect.MakeSlice(sliceVal.Type(), 0, determineInitialCapacity(expectedRows)))

	for rows.Next() {
		model := reflect.New(elemType).Elem()
		if err := rows.Scan(fieldPointers(model)...); err != nil {
			return nil, err
		}
		sliceVal.Set(reflect.Append(sliceVal, model))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return modelsSlice, nil
}

// GetColumnNames returns the model's column names as a slice of strings.
func GetColumnNames(m Model, excludeReadOnlyFields bool) []string {
	val := reflect.ValueOf(m)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	var columnNames []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if skipColumn(field, excludeReadOnlyFields) {
			continue
		}
		columnNames = append(columnNames, field.Tag.Get("db"))
	}
	return columnNames
}

func skipColumn(field reflect.StructField, excludeReadOnly bool) bool {
	tag := field.Tag.Get("db")
	if tag == "" || tag == "-" {
		return true
	}
	return excludeReadOnly && field.Tag.Get("readOnly") == "true"
}

func fieldPointers(model reflect.Value) []interface{} {
	typ := model.Type()
	ptrs := make([]interface{}, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if skipColumn(typ.Field(i), false) {
			continue
		}
		ptrs = append(ptrs, model.Field(i).Addr().Interface())
	}
	return ptrs
}

// Helper function to determine the initial capacity based on expected rows
func determineInitialCapacity(expectedRows int) int {
	switch {
	case expectedRows <= 10:
		return 10
	case expectedRows <= 25:
		return 20
	case expectedRows <= 50:
		return 35
	case expectedRows <= 100:
		return 75
	case expectedRows <= 200:
		return 150
	case expectedRows <= 500:
		return 400
	case expectedRows <= 1000:
		return 900
	default:
		return 1000
	}
}
