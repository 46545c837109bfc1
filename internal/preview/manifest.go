package preview

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one rendered frame in the output manifest.
type ManifestEntry struct {
	Display  string  `json:"display"`
	Tick     int     `json:"tick"`
	Image    string  `json:"image,omitempty"`
	Error    string  `json:"error,omitempty"`
	Paired   bool    `json:"paired"`
	Home     string  `json:"home"`
	Target   string  `json:"target"`
	Position string  `json:"position"`
	Pitch    string  `json:"pitch"`
	Yaw      string  `json:"yaw"`
	Roll     string  `json:"roll"`
	Speed    string  `json:"speed"`
	Distance float64 `json:"distance"`
	Status   string  `json:"status,omitempty"`
}

// WriteManifest writes the readouts of jobs, with their render results when
// results is not nil, to path as indented JSON.
func WriteManifest(path string, jobs []Job, results []Result) error {
	entries := make([]ManifestEntry, len(jobs))
	for i, j := range jobs {
		r := j.Frame.Readout
		e := ManifestEntry{
			Display:  j.Display,
			Tick:     j.Tick,
			Paired:   r.Paired,
			Home:     r.HomeLabel,
			Target:   r.TargetLabel,
			Position: r.Position,
			Pitch:    r.Pitch,
			Yaw:      r.Yaw,
			Roll:     r.Roll,
			Speed:    r.Speed,
			Distance: r.Distance,
		}
		if r.Paired {
			e.Status = r.Status.String()
		}
		if i < len(results) {
			if results[i].Success {
				e.Image = results[i].Image
			} else {
				e.Error = results[i].Error
			}
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
