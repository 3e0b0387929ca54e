package composer

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Package sections of composer.lock, searched in this order.
var lockSections = []string{"packages", "packages-dev"}

// FindPackage returns the gjson path of the record for name in composer.lock
// data, e.g. "packages.3".
func FindPackage(data []byte, name string) (string, bool) {
	for _, section := range lockSections {
		found := ""
		index := 0
		gjson.GetBytes(data, section).ForEach(func(_, value gjson.Result) bool {
			if value.Get("name").String() == name {
				found = section + "." + strconv.Itoa(index)
				return false
			}
			index++
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// PackageVersion returns the locked version of name, if present.
func PackageVersion(data []byte, name string) (string, bool) {
	path, ok := FindPackage(data, name)
	if !ok {
		return "", false
	}
	v := gjson.GetBytes(data, path+".version")
	return v.String(), v.Exists()
}

// ExtraPath returns the gjson path of extra.<key> under a package record.
func ExtraPath(recordPath, key string) string {
	return recordPath + ".extra." + escapeKey(key)
}
