package store

import (
	"fmt"

	"github.com/hupe1980/vizsync/vector"
)

func checkValue(f Field, v any) error {
	if v == nil {
		return nil
	}
	ok := false
	switch f.Kind {
	case KindInteger:
		_, ok = v.(int)
	case KindFloat:
		_, ok = v.(float64)
	case KindText:
		_, ok = v.(string)
	case KindBoolean:
		_, ok = v.(bool)
	case KindArray:
		_, ok = v.(vector.Array)
	case KindRelation:
		_, ok = v.(RowID)
	}
	if !ok {
		return fmt.Errorf("value of type %T does not match field kind %s", v, f.Kind)
	}
	return nil
}
