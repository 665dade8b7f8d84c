package main

import "github.com/fwojciec/markdownload"

// parseOverrides turns --set values into an option layer. "true" and
// "false" become booleans and "null" clears a value.
func parseOverrides(set map[string]string) markdownload.Overrides {
	if len(set) == 0 {
		return nil
	}
	o := make(markdownload.Overrides, len(set))
	for key, value := range set {
		switch value {
		case "true":
			o[key] = true
		case "false":
			o[key] = false
		case "null":
			o[key] = nil
		default:
			o[key] = value
		}
	}
	return o
}
