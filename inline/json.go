package inline

import (
	"encoding/json"

	"github.com/reelmark/reelmark/router"
	"github.com/reelmark/reelmark/source"
)

type Result struct {
	// Descriptor is the classification of the input.
	Descriptor source.Descriptor `json:"descriptor"`
	// Route is the backend the input would be played with.
	Route router.Target `json:"route"`
	// Reachable is set when a probe ran; ProbeError explains a failed one.
	Reachable  *bool  `json:"reachable,omitempty"`
	ProbeError string `json:"probe_error,omitempty"`
}

type Output struct {
	Result []*Result `json:"result"`
}

func asJson(results []*Result) ([]byte, error) {
	if results == nil {
		results = []*Result{}
	}
	return json.Marshal(&Output{Result: results})
}
