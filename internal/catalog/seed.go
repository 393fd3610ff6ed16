// internal/catalog/seed.go
package catalog

import (
	"context"
	"errors"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/models"

	"github.com/shopspring/decimal"
)

// Seed inserts funds that are not stored yet and leaves existing records
// untouched, so admin edits survive a restart. It returns how many funds
// were inserted.
func Seed(ctx context.Context, store Store, funds []models.Fund) (int, error) {
	inserted := 0
	for _, f := range funds {
		err := store.Insert(ctx, f)
		if errors.Is(err, apperrors.ErrFundAlreadyExists) {
			continue
		}
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// DefaultFunds is the built-in catalog used when no seed file is configured.
func DefaultFunds() []models.Fund {
	ten := decimal.NewNullDecimal(decimal.NewFromInt(10))
	veiculoFloor := map[string]decimal.Decimal{models.GarantiaVeiculo: decimal.NewFromInt(40)}

	constitucional := func(id, nome string, regioes ...string) models.Fund {
		return fund(id, nome, models.TipoConstitucional, models.Criterios{Regioes: regioes})
	}
	privado := func(id, nome string, c models.Criterios) models.Fund {
		c.ExigeCNPJ = true
		c.PisoFaturamento = ten
		return fund(id, nome, models.TipoPrivado, c)
	}
	homeEquity := func(id, nome string) models.Fund {
		return fund(id, nome, models.TipoPF, models.Criterios{
			Garantias:  []string{models.GarantiaImovel},
			TipoImovel: []string{models.TipoImovelResidencial},
		})
	}

	return []models.Fund{
		constitucional("BNB_FNE", "BNB - FNE", "Nordeste", "Minas"),
		constitucional("BASA_FNO", "BASA - FNO", "Norte"),
		constitucional("FCO_BB", "FCO - via Banco do Brasil", "Centro-Oeste"),

		fund("BNDES", "BNDES (equipamentos)", models.TipoDesenvolvimento, models.Criterios{
			ExigeCNPJ: true,
			Garantias: []string{models.GarantiaEquipamento},
		}),

		privado("ASIA", "Asia", models.Criterios{Garantias: []string{
			models.GarantiaImovel, models.GarantiaRecebiveis, models.GarantiaVeiculo,
		}}),
		privado("SB", "SB Crédito", models.Criterios{Garantias: []string{
			models.GarantiaImovel, models.GarantiaRecebiveis,
		}}),
		privado("SIFRA", "Sifra", models.Criterios{Garantias: []string{
			models.GarantiaImovel, models.GarantiaRecebiveis, models.GarantiaVeiculo,
		}}),
		privado("F3", "3F Fundo", models.Criterios{Garantias: []string{
			models.GarantiaImovel, models.GarantiaRecebiveis, models.GarantiaVeiculo,
		}}),
		privado("MULTIPLIQUE", "Multiplique", models.Criterios{PisosSegmento: map[string]decimal.Decimal{
			"Construtora":       decimal.NewFromInt(18),
			models.PisoCatchAll: decimal.NewFromInt(60),
		}}),
		privado("SAFRA", "Safra", models.Criterios{PisosGarantia: veiculoFloor}),
		privado("SOFISA", "Sofisa", models.Criterios{PisosGarantia: veiculoFloor}),
		privado("DAICOVAL", "Daicoval", models.Criterios{PisosGarantia: veiculoFloor}),

		homeEquity("TCASH", "TCash"),
		homeEquity("CASHME", "CashMe"),
		homeEquity("GALERIA", "Galeria"),
	}
}

func fund(id, nome string, tipo models.FundTipo, c models.Criterios) models.Fund {
	return models.Fund{
		ID: id,
		FundSpec: models.FundSpec{
			Nome:      nome,
			Tipo:      tipo,
			Ativo:     true,
			Criterios: c,
		},
	}
}
