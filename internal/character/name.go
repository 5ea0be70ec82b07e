package character

import "regexp"

// Name is a display name split into parts.
type Name struct {
	FirstName string
	NicName   string
	LastName  string
	FullName  string
}

// Order matters: a three-part name must never fall through to the
// two-token pattern. Separators include Unicode space separators such as
// U+00A0, which web forms often paste in.
var (
	fullNickPattern  = regexp.MustCompile(`^(.*?)[\s\p{Zs}]"(.*?)"[\s\p{Zs}](.*)$`)
	nickOnlyPattern  = regexp.MustCompile(`^(.*?)[\s\p{Zs}]"(.*?)"[\s\p{Zs}]*$`)
	firstLastPattern = regexp.MustCompile(`^(.*?)[\s\p{Zs}](.*)$`)
)

// ParseName splits `First "Nick" Last`, `First "Nick"` and `First Last`
// forms; anything else becomes the first name.
func ParseName(full string) Name {
	ret := Name{FullName: full}

	if m := fullNickPattern.FindStringSubmatch(full); m != nil {
		ret.FirstName, ret.NicName, ret.LastName = m[1], m[2], m[3]
		return ret
	}
	if m := nickOnlyPattern.FindStringSubmatch(full); m != nil {
		ret.FirstName, ret.NicName = m[1], m[2]
		return ret
	}
	if m := firstLastPattern.FindStringSubmatch(full); m != nil {
		ret.FirstName, ret.LastName = m[1], m[2]
		return ret
	}

	ret.FirstName = full
	return ret
}
