package services_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/app/services"
	"github.com/cupcakery/storefront/pkg/storage"
)

func day(d, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 30, 0, 0, time.UTC)
}

func TestSalesReportFilters(t *testing.T) {
	db := newDB(t)
	svc := services.NewReportService(repositories.NewReportRepository(db))
	u := makeUser(t, db, "nina")
	p := makeProduct(t, db, "Clássico", "Chocolate", "10.00", 100)

	makeOrder(t, db, u, "20.00", true, day(10, 9), line{p, 1})
	makeOrder(t, db, u, "35.50", true, day(12, 23), line{p, 2}) // last day, late evening
	makeOrder(t, db, u, "70.00", false, day(11, 10), line{p, 6})
	makeOrder(t, db, u, "15.00", true, day(9, 23), line{p, 1})
	makeOrder(t, db, u, "15.00", true, day(13, 0), line{p, 1})

	report, err := svc.Sales(context.Background(), "2026-03-10", "2026-03-12")
	require.NoError(t, err)

	assertMoney(t, "55.50", report.Revenue)
	assert.Equal(t, int64(2), report.OrdersCount)
	assert.Len(t, report.Orders, 2)
	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, int64(3), report.TopProducts[0].Units)
}

func TestSalesReportOpenRange(t *testing.T) {
	db := newDB(t)
	svc := services.NewReportService(repositories.NewReportRepository(db))

	report, err := svc.Sales(context.Background(), "", "")
	require.NoError(t, err)
	assertMoney(t, "0", report.Revenue)
	assert.Empty(t, report.TopProducts)

	u := makeUser(t, db, "otto")
	makeOrder(t, db, u, "12.00", true, day(1, 8))
	makeOrder(t, db, u, "18.25", true, day(20, 8))

	report, err = svc.Sales(context.Background(), "", "")
	require.NoError(t, err)
	assertMoney(t, "30.25", report.Revenue)
}

func TestSalesReportTopTen(t *testing.T) {
	db := newDB(t)
	svc := services.NewReportService(repositories.NewReportRepository(db))
	u := makeUser(t, db, "paulo")

	var products []models.Product
	for i := 0; i < 12; i++ {
		products = append(products, makeProduct(t, db, fmt.Sprintf("Sabor %02d", i), "Teste", "10.00", 100))
	}
	// Units sold: product i sells (i%5)+1, so several ties.
	var lines []line
	for i, p := range products {
		lines = append(lines, line{p, i%5 + 1})
	}
	makeOrder(t, db, u, "999.00", true, day(5, 12), lines...)

	report, err := svc.Sales(context.Background(), "", "")
	require.NoError(t, err)

	top := report.TopProducts
	require.Len(t, top, 10)
	assert.True(t, sort.SliceIsSorted(top, func(i, j int) bool {
		if top[i].Units != top[j].Units {
			return top[i].Units > top[j].Units
		}
		return *top[i].ProductID < *top[j].ProductID
	}), "sorted by units desc, then product id")
	assert.Equal(t, int64(5), top[0].Units)
	assert.Equal(t, products[4].ID, *top[0].ProductID)
	assert.Equal(t, products[9].ID, *top[1].ProductID)
}

func TestSalesReportMalformedDate(t *testing.T) {
	db := newDB(t)
	svc := services.NewReportService(repositories.NewReportRepository(db))

	_, err := svc.Sales(context.Background(), "10/03/2026", "")
	assert.ErrorIs(t, err, services.ErrInvalidDate)

	_, err = svc.Sales(context.Background(), "", "2026-02-30")
	assert.ErrorIs(t, err, services.ErrInvalidDate)
}

func TestSalesReportExport(t *testing.T) {
	db := newDB(t)
	root := t.TempDir()
	storage.RegisterDisk("reports-test", storage.NewLocalDisk(root, "/storage"))
	storage.SetDefault("reports-test")
	t.Cleanup(func() { storage.SetDefault("local") })

	svc := services.NewReportService(repositories.NewReportRepository(db))
	u := makeUser(t, db, "quinn")
	p := makeProduct(t, db, "Clássico", "Chocolate", "10.00", 100)
	makeOrder(t, db, u, "40.00", true, day(3, 12), line{p, 4})

	export, err := svc.Export(context.Background(), "2026-03-01", "2026-03-31")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(export.Path, "reports/vendas-"))
	assert.Equal(t, "/storage/"+export.Path, export.URL)

	raw, err := os.ReadFile(filepath.Join(root, export.Path))
	require.NoError(t, err)
	csv := string(raw)
	assert.Contains(t, csv, "total_vendido,40.00")
	assert.Contains(t, csv, fmt.Sprintf("1,%d,Clássico,Chocolate,4", p.ID))
}
