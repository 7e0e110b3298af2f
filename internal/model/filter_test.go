package model

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/TariqKichawele/Reflect/internal/errs"
)

func TestParseCollectionFilter_ThreeStates(t *testing.T) {
	t.Parallel()

	f, err := ParseCollectionFilter("")
	require.NoError(t, err)
	require.Equal(t, FilterAll, f.Kind)

	f, err = ParseCollectionFilter("unorganized")
	require.NoError(t, err)
	require.Equal(t, FilterUnorganized, f.Kind)

	id := uuid.Must(uuid.NewV4())
	f, err = ParseCollectionFilter(id.String())
	require.NoError(t, err)
	require.Equal(t, FilterByID, f.Kind)
	require.Equal(t, id, f.ID)
	require.Equal(t, id.String(), f.String())

	_, err = ParseCollectionFilter("not-a-uuid")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	o, err := ParseOrder("")
	require.NoError(t, err)
	require.Equal(t, OrderDesc, o)

	o, err = ParseOrder("ASC")
	require.NoError(t, err)
	require.Equal(t, OrderAsc, o)

	_, err = ParseOrder("sideways")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestEntry_CollectionPath(t *testing.T) {
	t.Parallel()

	e := Entry{}
	require.Equal(t, Unorganized, e.CollectionPath())

	id := uuid.Must(uuid.NewV4())
	e.CollectionID = &id
	require.Equal(t, id.String(), e.CollectionPath())
}
