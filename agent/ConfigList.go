package agent

import (
	"fmt"
	"reflect"
)

// ConfigList stores a number of Config's in a simple manner. Instead
// of storing a slice of Configs, a ConfigList stores a slice of values
// for each field of its Config and describes the list of every
// combination of field values.
//
// Each field of a concrete ConfigList must be a slice whose element
// type matches the field of the same name in the concrete Config
// returned by the Config() method.
type ConfigList interface {
	// Config returns an empty Config of the type stored by the list
	Config() Config

	// Type returns the type of agent constructed by the list's Configs
	Type() Type

	// NumFields returns the number of settable fields
	NumFields() int

	// Len returns the number of Configs stored by the list
	Len() int
}

// ConfigAt returns the Config at index i in the ConfigList. Configs are
// enumerated with the last field varying fastest. ConfigAt panics if
// i is out of range or the ConfigList is malformed.
func ConfigAt(i int, c ConfigList) Config {
	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("configAt: index %v out of range [0, %v)", i,
			c.Len()))
	}

	list := reflect.ValueOf(c)
	config := reflect.New(reflect.TypeOf(c.Config())).Elem()

	for field := list.NumField() - 1; field >= 0; field-- {
		values := list.Field(field)
		if values.Kind() != reflect.Slice {
			panic(fmt.Sprintf("configAt: field %v of %T is not a slice",
				list.Type().Field(field).Name, c))
		}

		name := list.Type().Field(field).Name
		target := config.FieldByName(name)
		if !target.IsValid() {
			panic(fmt.Sprintf("configAt: config %T has no field %v",
				c.Config(), name))
		}

		n := values.Len()
		target.Set(values.Index(i % n))
		i /= n
	}

	return config.Interface().(Config)
}
