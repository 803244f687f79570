package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Noop answers with a keyword-based classification so the service runs
// without provider credentials. It reads the report back out of the prompt.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Name() string  { return "noop" }
func (n *Noop) Model() string { return "noop" }

var noopRules = []struct {
	keywords []string
	category string
	summary  string
}{
	{[]string{"bueiro", "boca de lobo", "alagamento", "alagad", "esgoto", "enchente"}, "Drenagem e Saneamento",
		"Falha no sistema de drenagem resultando em acúmulo de água ou esgoto. Requer vistoria e desobstrução da rede."},
	{[]string{"rato", "barata", "escorpi", "dengue", "mosquito", "praga"}, "Controle de Zoonoses e Pragas",
		"Presença de vetores ou pragas resultando em risco sanitário à população. Requer ação de controle de zoonoses."},
	{[]string{"lixo", "entulho", "descarte", "resíduo", "residuo", "coleta"}, "Limpeza Urbana e Manejo de Resíduos",
		"Acúmulo irregular de resíduos resultando em degradação sanitária do local. Requer recolhimento e limpeza."},
	{[]string{"árvore", "arvore", "poda", "mato", "capina", "galho"}, "Manutenção de Áreas Verdes e Paisagismo",
		"Vegetação sem manutenção resultando em obstrução ou risco de queda. Requer poda ou roçada."},
	{[]string{"buraco", "calçada", "calcada", "poste", "lâmpada", "lampada", "iluminação", "iluminacao", "banco", "placa"}, "Infraestrutura e Conservação do Mobiliário Urbano",
		"Dano em infraestrutura ou mobiliário urbano resultando em prejuízo à circulação segura. Requer reparo."},
	{[]string{"pichação", "pichacao", "cartaz", "fumaça", "fumaca", "barulho", "queimada"}, "Poluição Visual e Ambiental",
		"Ocorrência de poluição visual ou ambiental resultando em degradação do espaço público. Requer fiscalização e limpeza."},
}

var noopUrgent = []string{"risco", "urgente", "perigo", "fio", "desabando", "caindo", "acidente", "transbord"}

func (n *Noop) Generate(_ context.Context, prompt string) (string, error) {
	lower := strings.ToLower(reportSection(prompt))

	category := "Outros"
	summary := "Demanda sem enquadramento específico resultando em necessidade de análise. Requer avaliação técnica."
	for _, rule := range noopRules {
		if containsAny(lower, rule.keywords) {
			category = rule.category
			summary = rule.summary
			break
		}
	}
	priority := "Média"
	switch {
	case containsAny(lower, noopUrgent):
		priority = "Alta"
	case category == "Outros":
		priority = "Baixa"
	}

	out, err := json.Marshal(map[string]string{
		"category":         category,
		"priority":         priority,
		"technicalSummary": summary,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// reportSection keeps only the citizen text so the category list in the
// prompt does not match every keyword.
func reportSection(prompt string) string {
	start := strings.Index(prompt, "Relato:")
	end := strings.Index(prompt, "Categorias permitidas")
	if start == -1 || end == -1 || end < start {
		return prompt
	}
	return prompt[start:end]
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
