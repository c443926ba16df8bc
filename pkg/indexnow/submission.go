package indexnow

import "fmt"

// Submission is the JSON body POSTed to the IndexNow endpoint.
type Submission struct {
	URLList     []string `json:"urlList"`
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation,omitempty"`
}

// Strings converts string-convertible values, such as []*url.URL, into the
// slice Notify accepts. Order is preserved.
func Strings[T fmt.Stringer](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String()
	}
	return out
}
