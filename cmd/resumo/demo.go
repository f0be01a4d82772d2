package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"resumo/internal/domain"
	"resumo/internal/summarizer"
)

const exampleText = `
    No período de 01 a 27 de outubro de 2025, o Condomínio Solar das Flores registrou e acompanhou diversas atividades e ocorrências com o objetivo de manter a ordem e o bem-estar dos moradores. Foram realizadas manutenções preventivas na piscina e nos portões automáticos, garantindo que os espaços comuns permanecessem seguros e funcionais. Comunicados sobre horários de silêncio foram enviados em datas estratégicas, lembrando os moradores da importância do respeito mútuo. No período, foram registradas algumas ocorrências, como vazamentos em unidades, lâmpadas queimadas nos corredores e queixas de barulho excessivo, todas sendo devidamente resolvidas ou monitoradas pela administração. As áreas comuns, incluindo salão de festas, churrasqueira e quadra de esportes, foram reservadas de acordo com a programação pelos moradores, sem conflitos de horários. Financeiramente, o condomínio manteve um controle rigoroso, com quatro unidades em atraso de pagamento, despesas dentro do previsto com limpeza, manutenção e energia elétrica, e um saldo positivo em conta de R$ 15.450,00, permitindo a continuidade das melhorias e a boa gestão do patrimônio comum.
    `

type textSummarizer interface {
	Summarize(ctx context.Context, text string) (string, bool)
}

// runDemo summarizes the built-in example and prints both texts. Nothing but
// the heading is printed when no summary is produced.
func runDemo(ctx context.Context, out io.Writer, client textSummarizer) {
	fmt.Fprintln(out, "\n--- Resumindo texto de exemplo ---")

	summary, ok := client.Summarize(ctx, exampleText)
	if !ok {
		return
	}

	fmt.Fprintln(out, "\nTexto Original:")
	fmt.Fprintln(out, exampleText)
	fmt.Fprintln(out, "\nResumo Gerado:")
	fmt.Fprintln(out, summary)
}

func printArticle(out io.Writer, title, url, summary string) {
	if title = strings.TrimSpace(title); title != "" {
		fmt.Fprintf(out, "## %s\n", title)
	}
	if url = strings.TrimSpace(url); url != "" {
		fmt.Fprintln(out, url)
	}
	fmt.Fprintln(out, summary)
}

// printer writes watcher digests to a stream.
type printer struct {
	out io.Writer
}

func (p *printer) Notify(_ context.Context, digest domain.Digest) error {
	if _, err := fmt.Fprintf(p.out, "# %s\n", digest.FeedTitle); err != nil {
		return err
	}

	printArticle(p.out, digest.Article.Title, digest.Article.URL, digest.Summary)

	_, err := fmt.Fprintln(p.out)

	return err
}

var _ textSummarizer = (*summarizer.Client)(nil)
