package utils

import "math"

// ToleranciaCentavos é a tolerância usada em comparações de somas monetárias.
const ToleranciaCentavos = 0.01

// Arredondar2 arredonda para duas casas decimais (centavos).
func Arredondar2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MesmoValor compara dois valores monetários dentro da tolerância de um centavo.
func MesmoValor(a, b float64) bool {
	return math.Abs(a-b) < ToleranciaCentavos
}
