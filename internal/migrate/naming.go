package migrate

import (
	"fmt"
	"hash/fnv"

	"github.com/spiffcs/bzmigrate/internal/constants"
	"github.com/spiffcs/bzmigrate/internal/model"
)

// maxLabelDescription is GitHub's limit on label descriptions.
const maxLabelDescription = 100

// LabelName returns the label for a product/component pair, e.g. "tools/opt".
func LabelName(product, component, separator string) string {
	if separator == "" {
		separator = constants.DefaultLabelSeparator
	}
	return product + separator + component
}

// ProductColor derives a stable label color from a product name so a product
// and its components share one color across runs.
func ProductColor(product string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(product))
	return fmt.Sprintf("%06x", h.Sum32()&0xffffff)
}

// ImportedBody is the body of the placeholder for record id.
func ImportedBody(baseURL string, id int) string {
	return fmt.Sprintf(constants.ImportedBodyFormat, model.ShowBugURL(baseURL, id))
}

func truncateDescription(s string) string {
	r := []rune(s)
	if len(r) <= maxLabelDescription {
		return s
	}
	return string(r[:maxLabelDescription-3]) + "..."
}
