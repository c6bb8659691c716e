package ruleset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcgiron/centavo/internal/model"
)

func includeRule(id int64, criterion string, merchantID int64) model.Rule {
	return model.Rule{ID: id, Kind: model.RuleInclude, Criterion: criterion, MerchantID: merchantID}
}

func excludeRule(id int64, criterion string, merchantID int64) model.Rule {
	return model.Rule{ID: id, Kind: model.RuleExclude, Criterion: criterion, MerchantID: merchantID}
}

func TestCompileSubstringMatch(t *testing.T) {
	set := Compile([]model.Rule{includeRule(1, "DESPENSA", 10)})
	require.Len(t, set.Includes, 1)

	assert.True(t, set.Includes[0].Matches("COMPRA DESPENSA FAMILIAR Z.11"))
	assert.True(t, set.Includes[0].Matches("compra despensa familiar"))
	assert.False(t, set.Includes[0].Matches("GASOLINERA SHELL"))
}

func TestCompileWildcard(t *testing.T) {
	set := Compile([]model.Rule{includeRule(1, "PAGO*LUZ", 10)})
	require.Len(t, set.Includes, 1)

	assert.True(t, set.Includes[0].Matches("PAGO SERVICIO DE LUZ"))
	assert.True(t, set.Includes[0].Matches("PAGOLUZ"))
	assert.False(t, set.Includes[0].Matches("LUZ PAGO"))
}

func TestCompileWildcardAnchorsAtStart(t *testing.T) {
	set := Compile([]model.Rule{includeRule(1, "AMAZON*", 10)})
	require.Len(t, set.Includes, 1)

	assert.True(t, set.Includes[0].Matches("AMAZON MARKETPLACE"))
	assert.True(t, set.Includes[0].Matches("AMAZON.COM"))
	// Only the suffix after the literal prefix is free.
	assert.False(t, set.Includes[0].Matches("MY AMAZON BILL"))
}

func TestCompileExactMatch(t *testing.T) {
	set := Compile([]model.Rule{includeRule(1, "=UBER", 10)})
	require.Len(t, set.Includes, 1)

	assert.True(t, set.Includes[0].Matches("UBER"))
	assert.True(t, set.Includes[0].Matches("uber"))
	assert.False(t, set.Includes[0].Matches("UBER EATS"))
}

func TestCompileRegexMetacharactersAreLiteral(t *testing.T) {
	set := Compile([]model.Rule{includeRule(1, "NETFLIX.COM", 10)})
	require.Len(t, set.Includes, 1)

	assert.True(t, set.Includes[0].Matches("NETFLIX.COM 866-579-7172"))
	// The dot is literal, not any-character.
	assert.False(t, set.Includes[0].Matches("NETFLIXXCOM"))
}

func TestCompileSkipsBlankCriteria(t *testing.T) {
	set := Compile([]model.Rule{
		includeRule(1, "   ", 10),
		includeRule(2, "", 10),
		includeRule(3, "SHELL", 10),
	})
	require.Len(t, set.Includes, 1)
	assert.Equal(t, int64(3), set.Includes[0].Rule.ID)
}

func TestCompilePreservesStoredOrder(t *testing.T) {
	set := Compile([]model.Rule{
		includeRule(5, "SUPER", 10),
		includeRule(9, "SUPERMERCADO", 20),
	})
	require.Len(t, set.Includes, 2)
	assert.Equal(t, int64(5), set.Includes[0].Rule.ID)
	assert.Equal(t, int64(9), set.Includes[1].Rule.ID)
}

func TestVetoedIsScopedToMerchant(t *testing.T) {
	set := Compile([]model.Rule{
		includeRule(1, "SHELL", 10),
		excludeRule(2, "SHELL CAFE", 10),
	})

	assert.True(t, set.Vetoed(10, "SHELL CAFE Z.10"))
	assert.False(t, set.Vetoed(10, "GASOLINERA SHELL"))
	// Another merchant's matches are never suppressed.
	assert.False(t, set.Vetoed(20, "SHELL CAFE Z.10"))
}

func TestCompileFreshSetPerCall(t *testing.T) {
	rules := []model.Rule{includeRule(1, "A", 10)}
	first := Compile(rules)
	second := Compile(rules)
	assert.NotSame(t, first, second)
	require.Len(t, second.Includes, 1)
}
