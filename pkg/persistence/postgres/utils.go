// Package postgres contains the table definitions and conversions for the
// postgresql persister
package postgres // import "github.com/joincivil/civil-tcr-registry/pkg/persistence/postgres"

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// JsonbPayload is the jsonb payload
type JsonbPayload map[string]interface{}

// Value is the value interface implemented for the sql driver
func (jp JsonbPayload) Value() (driver.Value, error) {
	return json.Marshal(jp)
}

// Scan is the scan interface implemented for the sql driver
func (jp *JsonbPayload) Scan(src interface{}) error {
	source, ok := src.([]byte)
	if !ok {
		return errors.New("type assertion .([]byte) failed")
	}
	return json.Unmarshal(source, jp)
}

// BigIntToString converts a big.Int to decimal string, nil as "0"
func BigIntToString(num *big.Int) string {
	if num == nil {
		return "0"
	}
	return num.String()
}

// StringToBigInt converts a decimal string to big.Int. An empty string is 0.
func StringToBigInt(num string) (*big.Int, error) {
	if num == "" {
		return new(big.Int), nil
	}
	i, ok := new(big.Int).SetString(num, 10)
	if !ok {
		return nil, fmt.Errorf("Invalid numeric value: %v", num)
	}
	return i, nil
}

// StringsToBigInts converts a list of decimal strings to big.Ints
func StringsToBigInts(nums ...string) ([]*big.Int, error) {
	ints := make([]*big.Int, len(nums))
	for i, num := range nums {
		converted, err := StringToBigInt(num)
		if err != nil {
			return nil, err
		}
		ints[i] = converted
	}
	return ints, nil
}

// DbFieldNameFromModelName gets the field name from db given model name
func DbFieldNameFromModelName(exampleStruct interface{}, fieldName string) (string, error) {
	sType := reflect.TypeOf(exampleStruct)
	field, ok := sType.FieldByName(fieldName)
	if !ok {
		return "", fmt.Errorf("%s does not exist", fieldName)
	}
	return field.Tag.Get("db"), nil
}

// StructFieldsForQuery returns the db field names of a struct joined for a
// query, and the same names prefixed with colons for named parameters
func StructFieldsForQuery(exampleStruct interface{}) (string, string) {
	sType := reflect.TypeOf(exampleStruct)
	fields := make([]string, sType.NumField())
	named := make([]string, sType.NumField())
	for i := 0; i < sType.NumField(); i++ {
		tag := sType.Field(i).Tag.Get("db")
		fields[i] = tag
		named[i] = ":" + tag
	}
	return strings.Join(fields, ", "), strings.Join(named, ", ")
}

// UpsertQueryString returns a named insert query that updates every field on
// conflict with the given key columns
func UpsertQueryString(tableName string, exampleStruct interface{}, keyColumns ...string) string {
	fields, named := StructFieldsForQuery(exampleStruct)
	isKey := map[string]bool{}
	for _, key := range keyColumns {
		isKey[key] = true
	}
	updates := []string{}
	for _, field := range strings.Split(fields, ", ") {
		if isKey[field] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", field, field))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s;", // nolint: gosec
		tableName, fields, named, strings.Join(keyColumns, ", "), strings.Join(updates, ", "))
}

// CheckTableCount returns the query to check the count of the table
func CheckTableCount(tableName string) string {
	queryString := fmt.Sprintf(`SELECT COUNT(*) FROM %v`, tableName) // nolint: gosec
	return queryString
}
