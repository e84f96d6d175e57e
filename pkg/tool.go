package pkg

// Subtract return the items of source not in exclude, keeping source order
func Subtract(source []string, exclude map[string]struct{}) []string {
	out := make([]string, 0, len(source))
	for _, v := range source {
		if _, ok := exclude[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
