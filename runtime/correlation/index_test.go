package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	index := NewIndex()
	index.Register("corr-1", "e1")
	index.Register("corr-1", "e2")
	index.Register("corr-2", "e3")

	assert.ElementsMatch(t, []string{"e1", "e2"}, index.Executions("corr-1"))
	assert.Equal(t, []string{"e3"}, index.Executions("corr-2"))

	index.Remove("corr-1", "e1")
	assert.Equal(t, []string{"e2"}, index.Executions("corr-1"))

	index.Remove("corr-1", "e2")
	assert.Nil(t, index.Executions("corr-1"))

	index.Register("", "e9")
	assert.Nil(t, index.Executions(""))
}
