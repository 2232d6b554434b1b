package domain

import "github.com/shopspring/decimal"

// slippage.go — aritmética de slippage y cantidades.
//
// Toda la matemática de precios/cantidades usa decimal para evitar drift de
// punto flotante binario en los umbrales de slippage. Al convertir a cantidades
// enviables al venue se trunca (no se redondea).

// VenuePrecision es el número de dígitos fraccionales que acepta el venue.
const VenuePrecision = 8

// MinQuantityAfterSlippage devuelve quantity × (1 - slippagePct/100).
// Es la cota advisory de un buy: la cantidad mínima aceptable tras slippage.
func MinQuantityAfterSlippage(quantity, slippagePct decimal.Decimal) decimal.Decimal {
	frac := slippagePct.Div(decimal.NewFromInt(100))
	return quantity.Mul(decimal.NewFromInt(1).Sub(frac))
}

// MinProceedsAfterSlippage devuelve price × amount × (1 - slippagePct/100).
// Es la cota advisory de un sell: los proceeds mínimos aceptables.
func MinProceedsAfterSlippage(price, amount, slippagePct decimal.Decimal) decimal.Decimal {
	frac := slippagePct.Div(decimal.NewFromInt(100))
	return price.Mul(amount).Mul(decimal.NewFromInt(1).Sub(frac))
}

// TruncateForVenue trunca un valor a la precisión del venue.
// Truncado, no redondeado: nunca enviamos más de lo calculado.
func TruncateForVenue(v decimal.Decimal) decimal.Decimal {
	return v.Truncate(VenuePrecision)
}
