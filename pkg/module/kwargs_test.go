// pkg/module/kwargs_test.go
package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKwargsAccessors(t *testing.T) {
	kw := Kwargs{
		"enabled": true,
		"offset":  int64(26),
		"depth":   "8",
		"ratio":   0.85,
		"name":    "probe",
		"magic":   []string{"a.magic", "b.magic"},
		"single":  "one.magic",
	}

	assert.True(t, kw.Bool("enabled"))
	assert.False(t, kw.Bool("missing"))

	assert.Equal(t, int64(26), kw.Int("offset"))
	assert.Equal(t, int64(8), kw.Int("depth"), "numeric strings coerce")
	assert.Zero(t, kw.Int("missing"))

	assert.Equal(t, 0.85, kw.Float("ratio"))
	assert.Equal(t, "probe", kw.String("name"))
	assert.Equal(t, "26", kw.String("offset"))

	assert.Equal(t, []string{"a.magic", "b.magic"}, kw.Strings("magic"))
	assert.Equal(t, []string{"one.magic"}, kw.Strings("single"), "scalars widen to one-element slices")
	assert.Nil(t, kw.Strings("missing"))

	v, ok := kw.Value("offset")
	assert.True(t, ok)
	assert.Equal(t, int64(26), v)
	_, ok = kw.Value("missing")
	assert.False(t, ok)
}

func TestKwargsCloneIsIndependent(t *testing.T) {
	orig := Kwargs{"offset": int64(1)}
	copied := orig.clone()
	copied["offset"] = int64(2)
	copied["new"] = "value"

	assert.Equal(t, int64(1), orig.Int("offset"))
	assert.False(t, orig.Has("new"))
}
