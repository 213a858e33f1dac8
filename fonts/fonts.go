package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinName is reported for the embedded fallback font
const BuiltinName = "go-regular"

// Source holds raw font file data and where it came from
type Source struct {
	Name string
	Data []byte
}

// systemCandidates are CJK-capable fonts tried when no path is configured.
// Replies from the companion persona are usually Chinese, which the
// builtin Go font cannot draw.
var systemCandidates = []string{
	`C:\Windows\Fonts\SimHei.ttf`,
	`C:\Windows\Fonts\msyh.ttc`,
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Medium.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
	"/usr/share/fonts/wenquanyi/wqy-microhei/wqy-microhei.ttc",
}

// Builtin returns the embedded Go Regular font
func Builtin() Source {
	return Source{Name: BuiltinName, Data: goregular.TTF}
}

// Resolve picks the font to render with. An explicit path must be readable;
// otherwise the first readable system candidate wins, then the builtin font.
func Resolve(path string) (Source, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Source{}, fmt.Errorf("failed to read font %s: %w", path, err)
		}
		return Source{Name: filepath.Base(path), Data: data}, nil
	}
	return resolveFrom(systemCandidates), nil
}

func resolveFrom(candidates []string) Source {
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if len(data) == 0 {
			continue
		}
		return Source{Name: filepath.Base(candidate), Data: data}
	}
	return Builtin()
}

// ErrEmptyFont is returned when font data has no bytes
var ErrEmptyFont = errors.New("font data is empty")
