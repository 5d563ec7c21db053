package dataset

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// Write stores the dataset as a classic NetCDF file at path
func Write(path string, ds *Dataset) (err error) {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer func() {
		if cerr := cw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing %s: %w", path, cerr)
		}
	}()

	if len(ds.Attributes) > 0 {
		global, err := orderedMap(ds.Attributes)
		if err != nil {
			return err
		}
		if err := cw.AddGlobalAttrs(global); err != nil {
			return fmt.Errorf("error writing global attributes: %w", err)
		}
	}

	for _, name := range ds.names {
		v := ds.variables[name]
		attrs, err := orderedMap(v.Attributes)
		if err != nil {
			return err
		}
		err = cw.AddVar(name, api.Variable{
			Values:     v.Values,
			Dimensions: v.Dimensions,
			Attributes: attrs,
		})
		if err != nil {
			return fmt.Errorf("error writing variable %s: %w", name, err)
		}
	}

	return nil
}

func orderedMap(m map[string]interface{}) (api.AttributeMap, error) {
	om, err := util.NewOrderedMap(sortedKeys(m), m)
	if err != nil {
		return nil, fmt.Errorf("error building attribute map: %w", err)
	}
	return om, nil
}
