package upload

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateName(t *testing.T) {
	suffixed := regexp.MustCompile(`-\d+-\d+`)

	t.Run("keeps safe characters and the lower-cased extension", func(t *testing.T) {
		name := GenerateName("Clinic Photo_1.JPG")

		assert.True(t, strings.HasPrefix(name, "Clinic Photo_1-"))
		assert.True(t, strings.HasSuffix(name, ".jpg"))
		assert.Regexp(t, suffixed, name)
	})

	t.Run("keeps Hebrew characters", func(t *testing.T) {
		name := GenerateName("תמונה.png")

		assert.True(t, strings.HasPrefix(name, "תמונה-"))
		assert.True(t, strings.HasSuffix(name, ".png"))
	})

	t.Run("strips path traversal sequences", func(t *testing.T) {
		name := GenerateName("../../etc/passwd")

		assert.NotContains(t, name, "..")
		assert.NotContains(t, name, "/")
		assert.True(t, strings.HasPrefix(name, "passwd-"))
	})

	t.Run("strips unsafe characters from the base name", func(t *testing.T) {
		name := GenerateName(`we!rd@na#me$.png`)

		assert.True(t, strings.HasPrefix(name, "werdname-"))
		assert.True(t, strings.HasSuffix(name, ".png"))
	})

	t.Run("drops an unsafe extension", func(t *testing.T) {
		name := GenerateName("photo.jp g")

		assert.False(t, strings.Contains(name, "."))
	})

	t.Run("consecutive names differ", func(t *testing.T) {
		a := GenerateName("photo.jpg")
		b := GenerateName("photo.jpg")

		assert.NotEqual(t, a, b)
	})
}
