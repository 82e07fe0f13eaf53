package fields

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bookPage is a minimal page object used across the tests.
type bookPage struct {
	title string
	price string
}

var bookFields = New().
	Add(Field{
		Name: "name",
		Get: func(page any) (any, error) {
			return page.(*bookPage).title, nil
		},
		Out: []Processor{func(v any) any {
			return strings.TrimSpace(v.(string))
		}},
	}).
	Add(Field{
		Name: "price",
		Get: func(page any) (any, error) {
			return page.(*bookPage).price, nil
		},
	})

func (p *bookPage) FieldSet() *FieldSet { return bookFields }

func TestFieldSet_NamesAndLookup(t *testing.T) {
	assert.Equal(t, []string{"name", "price"}, bookFields.Names())
	assert.Equal(t, 2, bookFields.Len())

	f, ok := bookFields.Lookup("price")
	require.True(t, ok)
	assert.Equal(t, "price", f.Name)

	_, ok = bookFields.Lookup("missing")
	assert.False(t, ok)
}

func TestFieldSet_ExtractAppliesProcessors(t *testing.T) {
	page := &bookPage{title: "  Hello  ", price: "$1"}

	v, err := bookFields.Extract(page, "name")
	require.NoError(t, err)
	assert.Equal(t, "Hello", v)

	_, err = bookFields.Extract(page, "missing")
	assert.Error(t, err)
}

func TestFieldSet_ExtractWrapsGetterError(t *testing.T) {
	boom := errors.New("no such element")
	set := New().Add(Field{
		Name: "broken",
		Get:  func(page any) (any, error) { return nil, boom },
	})

	_, err := set.Extract(&bookPage{}, "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestFieldSet_CachedGetterRunsOnce(t *testing.T) {
	calls := 0
	set := New().Add(Field{
		Name:   "expensive",
		Cached: true,
		Get: func(page any) (any, error) {
			calls++
			return "computed", nil
		},
	})

	pageA := &bookPage{}
	pageB := &bookPage{}

	for i := 0; i < 3; i++ {
		v, err := set.Extract(pageA, "expensive")
		require.NoError(t, err)
		assert.Equal(t, "computed", v)
	}
	assert.Equal(t, 1, calls, "cached field must compute once per page")

	_, err := set.Extract(pageB, "expensive")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "a different page gets its own cache entry")
}

func TestExtend_MergesInPlace(t *testing.T) {
	extra := New().
		Add(Field{
			Name: "name",
			Get: func(page any) (any, error) {
				return strings.ToUpper(page.(*bookPage).title), nil
			},
		}).
		Add(Field{
			Name: "currency",
			Get:  func(page any) (any, error) { return "USD", nil },
		})

	merged := Extend(bookFields, extra)

	// The override keeps the original position; the new field appends.
	assert.Equal(t, []string{"name", "price", "currency"}, merged.Names())

	v, err := merged.Extract(&bookPage{title: "hello"}, "name")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", v)

	// The base set is untouched.
	assert.Equal(t, []string{"name", "price"}, bookFields.Names())
}

func TestItemFromFields(t *testing.T) {
	page := &bookPage{title: " Chocolate ", price: "22€"}

	item, err := ItemFromFields(page)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Chocolate", "price": "22€"}, item)
}

func TestItemFromFields_AbortsOnError(t *testing.T) {
	set := New().
		Add(Field{Name: "ok", Get: func(page any) (any, error) { return 1, nil }}).
		Add(Field{Name: "bad", Get: func(page any) (any, error) {
			return nil, errors.New("nope")
		}})
	page := fixedSetPage{set}

	_, err := ItemFromFields(page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

type fixedSetPage struct{ set *FieldSet }

func (p fixedSetPage) FieldSet() *FieldSet { return p.set }

func TestAdd_PanicsOnBadDefinition(t *testing.T) {
	assert.Panics(t, func() {
		New().Add(Field{Get: func(any) (any, error) { return nil, nil }})
	})
	assert.Panics(t, func() {
		New().Add(Field{Name: "no-getter"})
	})
}
