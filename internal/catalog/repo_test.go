package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudclutches/storefront/internal/apperr"
	"github.com/cloudclutches/storefront/internal/money"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "name", "description", "price", "image_url"}

// amountArg matches a money argument by its two-decimal rendering.
type amountArg string

func (a amountArg) Match(v interface{}) bool {
	switch m := v.(type) {
	case money.Amount:
		return m.String() == string(a)
	case *money.Amount:
		return m != nil && m.String() == string(a)
	}
	return false
}

var noString = (*string)(nil)

func newRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Repo{DB: mock}, mock
}

func TestCreateProduct(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Clip", noString, amountArg("15.00"), "http://x/y.png").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(1), "Clip", nil, "15.00", "http://x/y.png"))

	p, err := repo.Create(context.Background(), ProductInput{Name: "Clip", Price: price("15.00"), ImageURL: "http://x/y.png"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Nil(t, p.Description)
	assert.Equal(t, "15.00", p.Price.String())

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Clip","description":null,"price":"15.00","imageUrl":"http://x/y.png"}`, string(b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductValidation(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    ProductInput
		field string
	}{
		{"missing name", ProductInput{Price: price("1"), ImageURL: "u"}, "name"},
		{"whitespace name", ProductInput{Name: " \t ", Price: price("1"), ImageURL: "u"}, "name"},
		{"blank image", ProductInput{Name: "Clip", Price: price("1"), ImageURL: " "}, "imageUrl"},
		{"missing price", ProductInput{Name: "Clip", ImageURL: "u"}, "price"},
		{"negative price", ProductInput{Name: "Clip", Price: price("-0.01"), ImageURL: "u"}, "price"},
		{"sub-paisa price", ProductInput{Name: "Clip", Price: price("1.001"), ImageURL: "u"}, "price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tc.in)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductNotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT .+ FROM products WHERE id").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListProductsEmptyIsNotNil(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT .+ FROM products ORDER BY id").WillReturnRows(pgxmock.NewRows(cols))

	ps, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ps)
	assert.Empty(t, ps)
}

func TestUpdateProductPartial(t *testing.T) {
	repo, mock := newRepo(t)
	desc := "Gold finish"
	mock.ExpectQuery("UPDATE products SET").
		WithArgs(int64(1), noString, false, noString, amountArg("18.00"), noString).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(1), "Clip", &desc, "18.00", "http://x/y.png"))

	p, err := repo.Update(context.Background(), 1, ProductPatch{Price: price("18.00")})
	require.NoError(t, err)
	assert.Equal(t, "18.00", p.Price.String())
	require.NotNil(t, p.Description)
	assert.Equal(t, desc, *p.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductClearsDescription(t *testing.T) {
	repo, mock := newRepo(t)
	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &patch))
	require.False(t, patch.Empty())

	mock.ExpectQuery("UPDATE products SET").
		WithArgs(int64(1), noString, true, noString, (*money.Amount)(nil), noString).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(1), "Clip", nil, "15.00", "u"))

	p, err := repo.Update(context.Background(), 1, patch)
	require.NoError(t, err)
	assert.Nil(t, p.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPatchDescriptionPresence(t *testing.T) {
	var absent, set ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Clip"}`), &absent))
	assert.False(t, absent.Description.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"description":"Gold"}`), &set))
	assert.True(t, set.Description.Set)
	require.NotNil(t, set.Description.Value)
	assert.Equal(t, "Gold", *set.Description.Value)

	assert.True(t, ProductPatch{}.Empty())
}

func TestUpdateProductRevalidatesPrice(t *testing.T) {
	repo, mock := newRepo(t)
	_, err := repo.Update(context.Background(), 1, ProductPatch{Price: price("-5")})
	assert.True(t, apperr.IsValidation(err))

	name := ""
	_, err = repo.Update(context.Background(), 1, ProductPatch{Name: &name})
	assert.True(t, apperr.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductNotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("UPDATE products SET").
		WithArgs(int64(42), strptr("New"), false, noString, (*money.Amount)(nil), noString).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Update(context.Background(), 42, ProductPatch{Name: strptr("New")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmptyPatchReturnsCurrent(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT .+ FROM products WHERE id").WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(3), "Pins", nil, "12.00", "u"))

	p, err := repo.Update(context.Background(), 3, ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Pins", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec("DELETE FROM products").WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestByIDsSkipsMissing(t *testing.T) {
	_, mock := newRepo(t)
	mock.ExpectQuery("FROM products WHERE id = ANY").WithArgs([]int64{1, 2}).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(1), "Clip", nil, "15.00", "u"))

	got, err := ByIDs(context.Background(), mock, []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	_, ok := got[2]
	assert.False(t, ok)
	assert.True(t, got[1].Price.Equal(money.MustParse("15")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestByIDsEmptySkipsQuery(t *testing.T) {
	_, mock := newRepo(t)
	got, err := ByIDs(context.Background(), mock, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedIfEmpty(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	for i := range starter {
		mock.ExpectQuery("INSERT INTO products").
			WithArgs(starter[i].Name, starter[i].Description, amountArg(starter[i].Price.String()), starter[i].ImageURL).
			WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(i+1), starter[i].Name, starter[i].Description, starter[i].Price.String(), starter[i].ImageURL))
	}

	n, err := SeedIfEmpty(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedSkipsPopulatedCatalog(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := SeedIfEmpty(context.Background(), repo)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountWrapsError(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("conn reset"))

	_, err := repo.Count(context.Background())
	assert.ErrorContains(t, err, "count products: conn reset")
}
