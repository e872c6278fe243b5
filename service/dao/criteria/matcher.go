package criteria

import (
	"github.com/viant/gator/service/dao"
)

// FilterByTrace reports whether a row with the supplied trace id matches the
// listing parameters. An empty parameter set matches everything.
func FilterByTrace(traceID string, parameters []*dao.Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "TraceID" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return traceID == actual
			case []string:
				for _, candidate := range actual {
					if traceID == candidate {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}
