package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/slighter12/uiinspect-go/toolkit"
)

const maxValueLength = 200

// FormatValue renders a property value as the normalized string form the
// wire Property Record carries, per the formatting policy in 4.F:
// strings verbatim, booleans as true/false, numbers as decimal, margins
// and paddings as a "(l,t,r,b)" tuple, colors as "#AARRGGBB", other
// complex values by their canonical string form truncated at 200
// characters, falling back to "[<TypeName>]" when stringification would
// otherwise just repeat the type name.
func FormatValue(v any, typeName string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return truncate(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case toolkit.Thickness:
		return formatThickness(x)
	case toolkit.Color:
		return formatColor(x)
	default:
		s := fmt.Sprintf("%v", x)
		if s == typeName || s == fmt.Sprintf("%T", x) {
			return fmt.Sprintf("[%s]", typeName)
		}
		return truncate(s)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatThickness(t toolkit.Thickness) string {
	return fmt.Sprintf("(%s,%s,%s,%s)",
		formatFloat(t.Left), formatFloat(t.Top), formatFloat(t.Right), formatFloat(t.Bottom))
}

func formatColor(c toolkit.Color) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxValueLength {
		return s
	}
	return strings.TrimSpace(string(r[:maxValueLength])) + "…"
}
