package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// Alfabeto sem caracteres ambíguos de URL; IDs de 6 posições dão espaço
// mais que suficiente para execuções e insights por usuário
const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 6
)

// GenerateID cria um ID curto para execuções e insights
func GenerateID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}
