package translate

import "strings"

type glossaryEntry struct {
	en, es string
}

// glossary pins report vocabulary the public engines tend to get wrong
var glossary = map[string]glossaryEntry{
	"Cliques":                              {"Clicks", "Clics"},
	"Impressões":                           {"Impressions", "Impresiones"},
	"CTR":                                  {"CTR", "CTR"},
	"Posição":                              {"Position", "Posición"},
	"Posição média":                        {"Average position", "Posición media"},
	"CTR médio":                            {"Average CTR", "CTR medio"},
	"Palavra-chave":                        {"Keyword", "Palabra clave"},
	"Sessões orgânicas":                    {"Organic sessions", "Sesiones orgánicas"},
	"Sessões":                              {"Sessions", "Sesiones"},
	"Novos usuários":                       {"New users", "Nuevos usuarios"},
	"Total de usuários":                    {"Total users", "Total de usuarios"},
	"Taxa de engajamento":                  {"Engagement rate", "Tasa de participación"},
	"Palavras-chave":                       {"Keywords", "Palabras clave"},
	"palavras-chave":                       {"keywords", "palabras clave"},
	"Tráfego orgânico":                     {"Organic traffic", "Tráfico orgánico"},
	"Concorrentes":                         {"Competitors", "Competidores"},
	"concorrentes":                         {"competitors", "competidores"},
	"Autoridade de domínio (DR)":           {"Domain Rating (DR)", "Calificación de dominio (DR)"},
	"Autoridade do site (DR)":              {"Domain Rating (DR)", "Calificación de dominio (DR)"},
	"Maiores ganhos em palavras-chave":     {"Top keyword gains", "Mayores ganancias en palabras clave"},
	"Maiores perdas em palavras-chave":     {"Top keyword losses", "Mayores pérdidas en palabras clave"},
	"Impressões (Acumulado)":               {"Impressions (Cumulative)", "Impresiones (Acumulado)"},
	"Ano anterior":                         {"Previous year", "Año anterior"},
	"Período anterior":                     {"Previous period", "Período anterior"},
	"Principais Métricas":                  {"Key metrics", "Métricas principales"},
	"Principais Métricas do Site":          {"Site key metrics", "Métricas principales del sitio"},
	"Principais Métricas do Blog":          {"Blog key metrics", "Métricas principales del blog"},
	"Palavras-chave e URLs":                {"Keywords and URLs", "Palabras clave y URLs"},
	"Palavras-chave e URLs do blog":        {"Blog keywords and URLs", "Palabras clave y URLs del blog"},
	"Ganhos e Perdas":                      {"Gains and losses", "Ganancias y pérdidas"},
	"Análise":                              {"Analysis", "Análisis"},
	"Análise do blog":                      {"Blog analysis", "Análisis del blog"},
	"Análise de concorrentes":              {"Competitor analysis", "Análisis de competidores"},
	"Análise (Tráfego por LLMs)":           {"Analysis (LLM traffic)", "Análisis (Tráfico por LLMs)"},
	"Tráfego por LLMs":                     {"LLM traffic", "Tráfico por LLMs"},
	"Conclusão":                            {"Conclusion", "Conclusión"},
	"Ações finalizadas":                    {"Completed actions", "Acciones finalizadas"},
	"Ações em andamento":                   {"Actions in progress", "Acciones en curso"},
	"Meta SEO":                             {"SEO goals", "Metas SEO"},
	"Total de palavras-chave no Top 3":     {"Total keywords in Top 3", "Total de palabras clave en Top 3"},
	"Total de palavras-chave no Top 4-10":  {"Total keywords in Top 4-10", "Total de palabras clave en Top 4-10"},
	"Tráfego orgânico dos concorrentes":    {"Competitors' organic traffic", "Tráfico orgánico de competidores"},
	"Relatório de desempenho do domínio":   {"Domain performance report", "Informe de rendimiento del dominio"},
	"Principais consultas":                 {"Top queries", "Consultas principales"},
	"Ações finalizadas de destaque":        {"Highlighted completed actions", "Acciones finalizadas destacadas"},
	"Equipe de SEO":                        {"SEO team", "Equipo de SEO"},
	"A meta definida abaixo é válida para o período. Ao final desse ciclo, será realizado um novo levantamento para reavaliação dos resultados.": {
		"The goal set below is valid for the period. At the end of this cycle, a new assessment will be carried out to re-evaluate results.",
		"La meta definida abajo es válida para el período. Al final de este ciclo, se realizará un nuevo levantamiento para reevaluación de los resultados.",
	},
	"A meta definida abaixo é válida para o período. Ao final do ciclo um novo levantamento reavalia os resultados.": {
		"The goal set below is valid for the period. At the end of the cycle a new assessment re-evaluates the results.",
		"La meta definida abajo es válida para el período. Al final del ciclo un nuevo levantamiento reevalúa los resultados.",
	},
}

// lookup returns the pinned translation of text, matched after trimming
func lookup(text string, lang Lang) (string, bool) {
	e, ok := glossary[strings.TrimSpace(text)]
	if !ok {
		return "", false
	}
	if lang == LangES {
		return e.es, true
	}
	return e.en, true
}
