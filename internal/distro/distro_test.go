package distro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFileDatabase(t *testing.T) {
	data := []byte("% ls-R -- filename database\n" +
		"./tex/latex/amsmath:\n" +
		"amsmath.sty\n" +
		"amstext.sty\n" +
		"\n" +
		"./tex/latex/base:\n" +
		"article.cls\n")

	files := parseFileDatabase(data)

	assert.Len(t, files, 3)
	assert.True(t, files["amsmath.sty"])
	assert.True(t, files["article.cls"])
	assert.False(t, files["./tex/latex/base:"])
}

func TestUnknownDistribution(t *testing.T) {
	d := &unknownDistribution{}
	assert.Equal(t, KindUnknown, d.Kind())
	assert.False(t, d.HasPackage("amsmath.sty"))
	assert.Equal(t, ErrKpsewhichNotFound, d.Load(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "TeX Live", KindTexlive.String())
	assert.Equal(t, "MiKTeX", KindMiktex.String())
	assert.Equal(t, "Unknown", KindUnknown.String())
}
