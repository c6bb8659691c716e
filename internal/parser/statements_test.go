package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcgiron/centavo/internal/model"
)

func TestGYTCheckingGrid(t *testing.T) {
	grid := make(Grid, 9)
	grid[1] = []string{"Nombre de la cuenta: JUAN PEREZ"}
	grid[2] = []string{"Cuenta: MONET (QTZ) 34-38089-1"}
	grid[3] = []string{"Saldo total: 1,500.25"}
	grid = append(grid,
		[]string{"Fecha", "Descripción", "Lugar", "Débito", "Crédito", "Saldo"},
		[]string{"02/06/2025", "PAGO SERVICIO LUZ", "GUATEMALA", "350.00", "", "1,150.25"},
		[]string{"05/06/2025", "DEPOSITO PLANILLA", "", "", "8,000.00", "9,150.25"},
		[]string{"", "", "", "", "", ""},
		[]string{"Saldo final", "", "", "", "", "9,150.25"},
	)

	var st model.StatementFile
	applyGYTCheckingHeader(grid, &st)
	assert.Equal(t, "MONET", st.AccountType)
	assert.Equal(t, "GTQ", st.Currency)
	assert.Equal(t, "34-38089-1", st.AccountNumber)
	assert.Equal(t, "JUAN PEREZ", st.Holder)
	assert.Equal(t, 1500.25, st.OpeningBalance)

	transactions, err := parseGYTCheckingGrid(grid, st.Currency)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, -350.0, transactions[0].Amount)
	assert.Equal(t, "GUATEMALA", transactions[0].Place)
	assert.Equal(t, 8000.0, transactions[1].Amount)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), transactions[1].Date)
}

func TestGYTCheckingGridTooShort(t *testing.T) {
	_, err := parseGYTCheckingGrid(Grid{{"solo"}}, "GTQ")
	assert.Error(t, err)
}

func TestGYTCheckingPDFLines(t *testing.T) {
	lines := []string{
		"Nombre cuenta: JUAN PEREZ",
		"Cuenta: MONETARIO QTZ. 34-38089-1",
		"Saldo inicial 1,500.25",
		"Fecha Documento Descripción Crédito/Débito Saldo",
		"02/06/2025 1234567 PAGO SERVICIO LUZ -350.00 1,150.25",
		"05/06/2025 7654321 DEPOSITO PLANILLA 8,000.00 9,150.25",
	}

	var st model.StatementFile
	applyGYTCheckingPDFHeader(lines, &st)
	assert.Equal(t, "MONET", st.AccountType)
	assert.Equal(t, "GTQ", st.Currency)
	assert.Equal(t, "34-38089-1", st.AccountNumber)
	assert.Equal(t, 1500.25, st.OpeningBalance)

	transactions, err := parseGYTCheckingPDFLines(lines, st.Currency)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, -350.0, transactions[0].Amount)
	assert.Equal(t, "1234567", transactions[0].DocumentNumber)
	assert.Equal(t, 8000.0, transactions[1].Amount)
}

func TestGYTCardGridPicksCurrencyColumn(t *testing.T) {
	grid := Grid{
		{"Nombre de la cuenta: JUAN PEREZ"},
		{"Tarjeta 5522-****-****-8241 Visa"},
		{},
		{"Fecha", "Referencia", "Descripción", "Crédito (Q)", "Débito (Q)", "Crédito ($)", "Débito ($)"},
		{},
		{"15/06/2025", "8842771", "RESTAURANTE KACAO", "", "385.00", "", ""},
		{"16/06/2025", "8842772", "AMAZON MKTP", "", "", "", "25.99"},
		{"20/06/2025", "8842773", "PAGO RECIBIDO", "1,000.00", "", "", ""},
		{},
	}

	var st model.StatementFile
	applyGYTCardHeader(grid, &st)
	assert.Equal(t, "TC", st.AccountType)
	assert.Equal(t, "5522-****-****-8241", st.AccountNumber)
	assert.Equal(t, "JUAN PEREZ", st.Holder)

	transactions, err := parseGYTCardGrid(grid)
	require.NoError(t, err)
	require.Len(t, transactions, 3)
	assert.Equal(t, -385.0, transactions[0].Amount)
	assert.Equal(t, "GTQ", transactions[0].Currency)
	assert.Equal(t, -25.99, transactions[1].Amount)
	assert.Equal(t, "USD", transactions[1].Currency)
	assert.Equal(t, 1000.0, transactions[2].Amount)
	assert.Equal(t, "GTQ", transactions[2].Currency)
}

func TestGYTCardGridWithoutHeader(t *testing.T) {
	_, err := parseGYTCardGrid(Grid{{"nada"}, {"aqui"}})
	assert.Error(t, err)
}

func TestGYTCardPDFLines(t *testing.T) {
	lines := []string{
		"Nombre cuenta: JUAN PEREZ 09-07-2025 | 07:18:06",
		"Cuenta: TCR 5522-****-****-8241 Día de corte 09 | Día de pago: 04",
		"15/06/2025 8842771 RESTAURANTE KACAO -385.00 QTZ",
		"18/06/2025 8842772 NETFLIX.COM -12.99 USD",
	}

	var st model.StatementFile
	applyGYTCardPDFHeader(lines, &st)
	assert.Equal(t, "5522-****-****-8241", st.AccountNumber)
	assert.Equal(t, "JUAN PEREZ", st.Holder)

	transactions, err := parseGYTCardPDFLines(lines)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "GTQ", transactions[0].Currency)
	assert.Equal(t, -385.0, transactions[0].Amount)
	assert.Equal(t, "USD", transactions[1].Currency)
}

func TestBICheckingLinesSkipRowsBeforeAnchor(t *testing.T) {
	var st model.StatementFile
	lines := []string{
		"01/06/2025 100 MOVIMIENTO SIN ANCLA 50.00 950.00",
		"****SALDO ANTERIOR**** 1,000.00",
		"02/06/2025 101 CHEQUE PAGADO 200.00 800.00",
		"03/06/2025 102 DEPOSITO EFECTIVO 500.00 1,300.00",
	}

	transactions := parseBICheckingLines(lines, &st)
	require.Len(t, transactions, 2)
	assert.Equal(t, 1000.0, st.OpeningBalance)
	assert.Equal(t, -200.0, transactions[0].Amount)
	assert.Equal(t, 500.0, transactions[1].Amount)
}

func TestBIDayRowsBuildDatesFromPeriod(t *testing.T) {
	var st model.StatementFile
	period := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	lines := []string{
		"SALDO ANTERIOR 2,000.00",
		"5 4455 PAGO ENERGIA ELECTRICA 350.00 1,650.00",
		"12 4456 DEPOSITO PLANILLA 8,000.00 9,650.00",
	}

	transactions := parseBIDayRows(lines, &st, period)
	require.Len(t, transactions, 2)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), transactions[0].Date)
	assert.Equal(t, -350.0, transactions[0].Amount)
	assert.Equal(t, 8000.0, transactions[1].Amount)
}

func TestBILegacySectionBrackets(t *testing.T) {
	var st model.StatementFile
	period := time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC)
	lines := []string{
		"7 9999 FUERA DE SECCION 100.00 100.00",
		"Dia Docto. Descripción Débito Crédito Saldo",
		"SALDO ANTERIOR 500.00",
		"8 1001 CHEQUE PAGADO 100.00 400.00",
		"****ULTIMA LINEA****",
		"9 1002 TAMBIEN FUERA 50.00 350.00",
	}

	transactions := parseBILegacySection(lines, &st, period)
	require.Len(t, transactions, 1)
	assert.Equal(t, -100.0, transactions[0].Amount)
	assert.Equal(t, time.Date(2022, 11, 8, 0, 0, 0, 0, time.UTC), transactions[0].Date)
}

func TestBICardGridSignsByMovementType(t *testing.T) {
	grid := make(Grid, 11)
	grid[2] = []string{"Titular", "JUAN PEREZ"}
	grid[4] = []string{"Tarjeta", "4111-****-****-1111"}
	grid[6] = []string{"Moneda", "Q."}
	grid = append(grid,
		[]string{"FECHA", "TIPO DE MOVMIENTO", "NO. DOC", "COMERCIO", "VALOR"},
		[]string{"10/05/2025", "CONSUMO", "555", "SUPERMERCADO PAIZ", "Q. 7,400.40"},
		[]string{"15/05/2025", "PAGO", "556", "PAGO EN LINEA", "Q. 5,000.00"},
		[]string{"", "", "", "", ""},
	)

	var st model.StatementFile
	applyBICardHeader(grid, &st)
	assert.Equal(t, "TC", st.AccountType)
	assert.Equal(t, "GTQ", st.Currency)
	assert.Equal(t, "4111-****-****-1111", st.AccountNumber)

	transactions, err := parseBICardGrid(grid, st.Currency)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, -7400.40, transactions[0].Amount)
	assert.Equal(t, "SUPERMERCADO PAIZ", transactions[0].Description)
	assert.Equal(t, 5000.0, transactions[1].Amount)
}

func TestBICardEmailSectionsAndCutoff(t *testing.T) {
	var st model.StatementFile
	lines := []string{
		"JOSE CARLOS GIRON MARQUEZ",
		"XXXX XXXX XXXX 9980 PLATINUM",
		"Fecha de corte: 10 06 2023",
		"MOVIMIENTOS EN QUETZALES",
		"29/05/23 27/05/23 METAMORFOSIS GT 220.00",
		"14/09/21 14/09/21 GRACIAS POR SU PAGO 79.73",
		"TOTAL QUETZALES 140.27",
		"MOVIMIENTOS EN DOLARES",
		"30/05/23 28/05/23 SPOTIFY USA 9.99",
		"TOTAL DOLARES 9.99",
		"PAGOS REALIZADOS",
		"01/06/23 01/06/23 PAGO BANCA VIRTUAL 140.27",
	}

	cutoff := applyBICardEmailHeader(lines, &st)
	assert.Equal(t, "TC-PLATINUM", st.AccountType)
	assert.Equal(t, "XXXX-XXXX-XXXX-9980", st.AccountNumber)
	assert.Equal(t, "JOSE CARLOS GIRON MARQUEZ", st.Holder)
	assert.Equal(t, time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC), cutoff)

	transactions := parseBICardEmailLines(lines, cutoff)
	require.Len(t, transactions, 3)
	assert.Equal(t, -220.0, transactions[0].Amount)
	assert.Equal(t, time.Date(2023, 5, 27, 0, 0, 0, 0, time.UTC), transactions[0].Date)
	assert.Equal(t, 79.73, transactions[1].Amount)
	assert.Equal(t, "USD", transactions[2].Currency)
}

func TestBIVirtualGridStopsAtBadDate(t *testing.T) {
	grid := Grid{
		{"Titular", "JUAN PEREZ", "No.", "4111222233334444"},
		{},
		{"Operación", "Movimiento", "tipo de movimiento", "no. doc", "concepto", "valor", "saldo"},
		{"01/12/2025", "01/12/2025", "CONSUMO", "777", "UBER EATS", "85.00", "915.00"},
		{"03/12/2025", "03/12/2025", "PAGO", "778", "PAGO TC", "500.00", "1,415.00"},
		{"Totales", "", "", "", "", "", ""},
	}

	transactions := parseBIVirtualGrid(grid)
	require.Len(t, transactions, 2)
	assert.Equal(t, -85.0, transactions[0].Amount)
	assert.Equal(t, 500.0, transactions[1].Amount)
}

func TestBIVirtualCSVFallsBackToBalanceColumn(t *testing.T) {
	records := [][]string{
		{"Operación", "Movimiento", "tipo de movimiento", "no. doc", "concepto", "valor", "saldo"},
		{"01/12/2025", "01/12/2025", "CONSUMO", "777", "UBER EATS", "", "85.00"},
		{"03/12/2025", "", "ABONO", "778", "PAGO TC", "500.00", ""},
		{"sin fecha", "", "CONSUMO", "779", "IGNORADO", "10.00", ""},
	}

	transactions := parseBIVirtualCSV(records)
	require.Len(t, transactions, 2)
	assert.Equal(t, -85.0, transactions[0].Amount)
	assert.Equal(t, 500.0, transactions[1].Amount)
}

func TestBACCardRecordsFlipSignAndStop(t *testing.T) {
	records := [][]string{
		{"Número de Tarjeta", "Nombre", "Fecha"},
		{"4111-XXXX-1111", "JOSE GIRON", "10/07/2025"},
		{},
		{"resumen"},
		{},
		{"01/07/2025", "WALMART GUATEMALA", "450.00", "0"},
		{"07/25/2025", "AMAZON PRIME", "0", "14.99"},
		{"05/07/2025", "PAGO RECIBIDO", "-1,000.00", "0"},
		{"Current", "", "", ""},
		{"08/07/2025", "DESPUES DEL CORTE", "99.00", "0"},
	}

	var st model.StatementFile
	applyBACCardHeader(records, &st)
	assert.Equal(t, "4111-XXXX-1111", st.AccountNumber)
	assert.Equal(t, "JOSE GIRON", st.Holder)

	transactions := parseBACCardRecords(records)
	require.Len(t, transactions, 3)
	assert.Equal(t, -450.0, transactions[0].Amount)
	assert.Equal(t, "GTQ", transactions[0].Currency)
	// Month-first fallback for the second row.
	assert.Equal(t, time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC), transactions[1].Date)
	assert.Equal(t, "USD", transactions[1].Currency)
	// Payments come in negative and flip to positive.
	assert.Equal(t, 1000.0, transactions[2].Amount)
}

func TestPromericaMovements(t *testing.T) {
	movs := Grid{
		{"Fecha de Operación", "Descripción", "Número de Referencia", "Débitos", "Créditos", "Moneda"},
		{"04/08/2025", "FARMACIA GALENO", "112233", "185.50", "", "QUETZALES"},
		{"09/08/2025", "PAGO ESTADO DE CUENTA", "112234", "", "2,000.00", "QUETZALES"},
		{"11/08/2025", "STEAM PURCHASE", "112235", "19.99", "", "DOLARES"},
	}

	transactions, err := parsePromericaMovements(movs)
	require.NoError(t, err)
	require.Len(t, transactions, 3)
	assert.Equal(t, -185.50, transactions[0].Amount)
	assert.Equal(t, "GTQ", transactions[0].Currency)
	assert.Equal(t, 2000.0, transactions[1].Amount)
	assert.Equal(t, "USD", transactions[2].Currency)
}

func TestPromericaHeaderTrimsCardTier(t *testing.T) {
	meta := Grid{
		{},
		{"Titular", "JOSE GIRON"},
		{"", "", "", "554433 - ORO"},
	}

	var st model.StatementFile
	applyPromericaHeader(meta, &st)
	assert.Equal(t, "554433", st.AccountNumber)
	assert.Equal(t, "JOSE GIRON", st.Holder)
	assert.Equal(t, "GTQ|USD", st.Currency)
}

func TestInterbancoLines(t *testing.T) {
	lines := []string{
		"CUENTA No. 7101-70430-1 PAGINA No. 1",
		"MAYO 2024 QUETZALES ESTADO DE CUENTA",
		"GIRON MARQUEZ JOSE CARLOS",
		"SALDO AL 30/04/2024 0.00",
		"20 DEPOSITO DE AHORRO 17265200 300.00 300.00",
		"21 ACH INTERBANCO 8808544 25,000.00 25,300.00",
		"24 I006Apartamento Vistares 9052445 41,740.00 0.00",
	}

	var st model.StatementFile
	period, err := applyInterbancoHeader(lines, &st)
	require.NoError(t, err)
	assert.Equal(t, "7101-70430-1", st.AccountNumber)
	assert.Equal(t, "GIRON MARQUEZ JOSE CARLOS", st.Holder)
	assert.Equal(t, time.May, period.Month())

	transactions := parseInterbancoLines(lines, &st, period)
	require.Len(t, transactions, 3)
	assert.Equal(t, 300.0, transactions[0].Amount)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), transactions[0].Date)
	assert.Equal(t, 25000.0, transactions[1].Amount)
	assert.Equal(t, -41740.0, transactions[2].Amount)
}

func TestInterbancoHeaderRequiresAccountNumber(t *testing.T) {
	var st model.StatementFile
	_, err := applyInterbancoHeader([]string{"nada util"}, &st)
	assert.Error(t, err)
}

func TestSignByKindToken(t *testing.T) {
	assert.Equal(t, 100.0, signByKindToken(-100, "abono"))
	assert.Equal(t, 100.0, signByKindToken(100, "Crédito"))
	assert.Equal(t, -100.0, signByKindToken(100, "cargo"))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "GTQ", normalizeCurrency("(QTZ)"))
	assert.Equal(t, "GTQ", normalizeCurrency("QUETZALES"))
	assert.Equal(t, "USD", normalizeCurrency("DOLARES"))
	assert.Equal(t, "EUR", normalizeCurrency("eur"))
	assert.Equal(t, "", normalizeCurrency(""))
}

func TestNormalizeAccountType(t *testing.T) {
	assert.Equal(t, "MONET", normalizeAccountType("MONETARIO"))
	assert.Equal(t, "MONET", normalizeAccountType("Monetaria"))
	assert.Equal(t, "AHO", normalizeAccountType("AHORRO"))
	assert.Equal(t, "TC", normalizeAccountType("tc"))
}
