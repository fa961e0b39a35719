package csvimport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/bobmcallan/budgeter/internal/services/asset"
	"github.com/bobmcallan/budgeter/internal/services/investment"
	"github.com/bobmcallan/budgeter/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	storage     *memory.Manager
	investments *investment.Service
	importer    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := common.NewSilentLogger()
	storage := memory.NewManager(logger)
	inv := investment.NewService(storage, asset.NewService(logger), common.LedgerConfig{BaseCurrency: "EUR"}, logger)
	return &fixture{
		storage:     storage,
		investments: inv,
		importer:    NewService(inv, NewNormalizer(models.EUR, "Trading212"), logger),
	}
}

func csvOf(rows ...string) string {
	return strings.Join(rows, "\n")
}

func TestImport_ValidFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.importer.Import(ctx, "test-trading212.csv", strings.NewReader(csvOf(header, buyRow, sellRow, dividendRow)))
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowsRead)
	assert.Equal(t, 3, result.Imported)
	assert.Len(t, result.Transactions, 3)
	assert.Empty(t, result.Issues)
	assert.Equal(t, "imported 3 of 3 rows from file test-trading212.csv", result.Summary())

	assets, err := f.investments.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "US0378331005", assets[0].ISIN)

	page, err := f.investments.ListInvestments(ctx, models.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	inv := page.Items[0]
	assert.True(t, dec("5").Equal(inv.TotalUnits))
	assert.True(t, dec("751.25").Equal(inv.TotalCost))
	assert.True(t, dec("23.75").Equal(inv.RealizedGainLoss))
	assert.True(t, dec("0.0207172608").Equal(result.Transactions[2].Amount))
}

func TestImport_SkipsShortRow(t *testing.T) {
	f := newFixture(t)
	otherSell := strings.Replace(sellRow, "EOF34000698236", "EOF1", 1)

	result, err := f.importer.Import(context.Background(), "mixed.csv",
		strings.NewReader(csvOf(header, buyRow, "Invalid Row,With Too Few Columns", otherSell, dividendRow)))
	require.NoError(t, err)

	assert.Equal(t, 4, result.RowsRead)
	assert.Equal(t, 3, result.Imported)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 3, result.Issues[0].Row)
	assert.Equal(t, models.IssueMalformed, result.Issues[0].Kind)
	assert.True(t, result.Issues[0].Skipped)
	assert.Equal(t, 1, result.SkippedRows())
}

func TestImport_EmptyFile(t *testing.T) {
	for name, content := range map[string]string{"empty": "", "header only": header + "\n"} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			result, err := f.importer.Import(context.Background(), "empty.csv", strings.NewReader(content))
			require.ErrorIs(t, err, ErrEmptyFile)
			assert.Nil(t, result)

			page, err := f.investments.ListTransactions(context.Background(), models.PageRequest{})
			require.NoError(t, err)
			assert.Zero(t, page.TotalItems)
		})
	}
}

func TestImport_OnlyFramingFailuresIsNotEmpty(t *testing.T) {
	f := newFixture(t)
	framing := []models.ImportIssue{
		{Row: 2, Kind: models.IssueMalformed, Message: "record on line 2: extraneous \" in field", Skipped: true},
	}

	result, err := f.importer.importRecords(context.Background(), "broken.csv",
		[]record{{line: 1, fields: split(header)}}, framing)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsRead)
	assert.Zero(t, result.Imported)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.IssueMalformed, result.Issues[0].Kind)
	assert.Equal(t, 1, result.SkippedRows())
}

func TestImport_ReimportIsHarmless(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	content := csvOf(header, buyRow, sellRow)

	_, err := f.importer.Import(ctx, "a.csv", strings.NewReader(content))
	require.NoError(t, err)

	result, err := f.importer.Import(ctx, "a.csv", strings.NewReader(content))
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	require.Len(t, result.Issues, 2)
	for _, issue := range result.Issues {
		assert.Equal(t, models.IssueDuplicate, issue.Kind)
	}
}

func TestImport_OversellRowIsSkipped(t *testing.T) {
	f := newFixture(t)
	result, err := f.importer.Import(context.Background(), "sell.csv", strings.NewReader(csvOf(header, sellRow, buyRow)))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.IssueValidation, result.Issues[0].Kind)
	assert.Equal(t, 2, result.Issues[0].Row)
}

func TestImport_WarningsAreSurfaced(t *testing.T) {
	f := newFixture(t)
	row := strings.Replace(buyRow, "Market buy", "Corporate action", 1)

	result, err := f.importer.Import(context.Background(), "w.csv", strings.NewReader(csvOf(header, row)))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.IssueUnknownAction, result.Issues[0].Kind)
	assert.False(t, result.Issues[0].Skipped)
}

func TestImport_HandlesBOMAndQuotes(t *testing.T) {
	f := newFixture(t)
	quoted := strings.Replace(buyRow, "Apple Inc.", `"Apple, Inc."`, 1)

	result, err := f.importer.Import(context.Background(), "bom.csv", strings.NewReader("\xEF\xBB\xBF"+csvOf(header, quoted)))
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)
	assert.Equal(t, "Apple, Inc. AAPL", result.Transactions[0].Name)
}

// stubInvestments fails every create with a fixed error.
type stubInvestments struct {
	interfaces.InvestmentService
	err   error
	calls int
}

func (s *stubInvestments) CreateTransaction(ctx context.Context, req models.InvestmentTransactionRequest) (*models.InvestmentTransaction, error) {
	s.calls++
	return nil, s.err
}

func TestImport_PersistenceFailureContinuesBatch(t *testing.T) {
	stub := &stubInvestments{err: errors.New("connection reset")}
	svc := NewService(stub, NewNormalizer(models.EUR, ""), common.NewSilentLogger())

	result, err := svc.Import(context.Background(), "p.csv", strings.NewReader(csvOf(header, buyRow, sellRow)))
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
	assert.Zero(t, result.Imported)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, models.IssuePersistence, result.Issues[0].Kind)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestImport_ReadFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.importer.Import(context.Background(), "x.csv", failingReader{})
	assert.ErrorIs(t, err, ErrReadFile)
}

func TestImport_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.importer.Import(ctx, "c.csv", strings.NewReader(csvOf(header, buyRow)))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Zero(t, result.Imported)
}
