package triage

import (
	"fmt"
	"strings"
)

var categoryRules = map[Category]string{
	CategorySanitation:     "lixo, entulho, descarte irregular, varrição, coleta não realizada, animais mortos em via pública",
	CategoryGreenAreas:     "poda, árvore caída ou com risco de queda, roçada, capina, praças e canteiros sem manutenção",
	CategoryInfrastructure: "buracos, calçadas, meio-fio, iluminação pública, bancos, lixeiras, placas, abrigos de ônibus e demais equipamentos existentes danificados",
	CategoryDrainage:       "bueiros e bocas de lobo entupidos, alagamentos, esgoto a céu aberto, vazamentos de rede, galerias pluviais",
	CategoryPollution:      "pichação, cartazes irregulares, fumaça, queimadas, poluição sonora, odores, descarte de óleo",
	CategoryZoonoses:       "infestação de ratos, baratas, escorpiões, mosquitos, focos de dengue, animais peçonhentos",
	CategoryOther:          "qualquer relato que não se enquadre claramente nas categorias anteriores",
}

const promptExample = `{"category": "Drenagem e Saneamento", "priority": "Alta", "technicalSummary": "Boca de lobo obstruída por resíduos resultando em alagamento da via e risco a pedestres. Requer desobstrução e limpeza da galeria pluvial."}`

// BuildPrompt renders the classification prompt for a report. It is a pure
// function of Title and Description.
func BuildPrompt(r Report) string {
	var b strings.Builder

	b.WriteString("Você é um engenheiro civil especialista em triagem de zeladoria urbana de uma prefeitura.\n")
	b.WriteString("Analise o relato do cidadão abaixo e classifique o problema pela sua causa raiz.\n\n")

	b.WriteString("Relato:\n")
	fmt.Fprintf(&b, "Título: %s\n", r.Title)
	fmt.Fprintf(&b, "Descrição: %s\n\n", r.Description)

	b.WriteString("Categorias permitidas (use exatamente um destes textos, com acentos):\n")
	for i, c := range Categories {
		fmt.Fprintf(&b, "%d. \"%s\": %s.\n", i+1, c, categoryRules[c])
	}
	b.WriteString("\nRegras de desempate:\n")
	b.WriteString("- Se resíduos ou entulho estiverem atraindo pragas, a causa raiz é limpeza urbana (\"" + string(CategorySanitation) + "\"), não controle de pragas.\n")
	b.WriteString("- Se o alagamento for causado por bueiro entupido de lixo, a causa raiz é drenagem (\"" + string(CategoryDrainage) + "\").\n")
	b.WriteString("- Árvore que danificou calçada ou fiação: classifique pela árvore (\"" + string(CategoryGreenAreas) + "\").\n")
	b.WriteString("- Pedidos de instalação nova, intervenções artísticas, sugestões ou melhorias que não sejam reparo de algo existente: use \"" + string(CategoryOther) + "\" com prioridade \"" + string(PriorityLow) + "\".\n\n")

	b.WriteString("Prioridades permitidas:\n")
	fmt.Fprintf(&b, "- \"%s\": risco imediato à vida, à saúde ou ao patrimônio (fiação exposta, árvore prestes a cair, buraco profundo em via movimentada, alagamento ativo, esgoto transbordando).\n", PriorityHigh)
	fmt.Fprintf(&b, "- \"%s\": incômodo crônico sem risco imediato (lixo acumulado há dias, lâmpada queimada, mato alto, foco de mosquito).\n", PriorityMedium)
	fmt.Fprintf(&b, "- \"%s\": problema estético ou de baixo impacto (pichação, banco desgastado, pintura apagada).\n\n", PriorityLow)

	b.WriteString("Resumo técnico: 1 ou 2 frases, entre 10 e 300 caracteres, seguindo o modelo:\n")
	b.WriteString("\"[problema técnico] resultando em [consequência operacional ou de risco]. Requer [ação municipal].\"\n\n")

	b.WriteString("Retorne APENAS um objeto JSON válido, sem nenhum texto antes ou depois e sem blocos de código, com exatamente as chaves \"category\", \"priority\" e \"technicalSummary\".\n")
	b.WriteString("Exemplo:\n")
	b.WriteString(promptExample)
	b.WriteString("\n")

	return b.String()
}
