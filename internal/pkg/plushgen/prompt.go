package plushgen

import "fmt"

// BuildPrompt produces the transformation instruction for a style name.
func BuildPrompt(styleName string) string {
	return fmt.Sprintf("Transform the subject(s) in this photo into an adorable %s style plush toy / stuffed animal. "+
		"The plush toy should have soft, rounded features, visible stitching/seam details, and a fabric-like texture. "+
		"Keep the overall likeness and distinguishing features recognizable, but make everything look soft, cuddly, and toy-like. "+
		"The background should be a clean, simple studio setting.", styleName)
}
