package services

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/zapedido/zapedido-backend/internal/models"
	"github.com/zapedido/zapedido-backend/internal/parser"
)

// Conversation texts, all pt-BR. Everything the bot ever says lives here
// so the state machine stays free of copy.

func menuText(name string) string {
	greeting := "Olá!"
	if name != "" {
		greeting = fmt.Sprintf("Olá, %s!", name)
	}
	return greeting + ` 🍉 Bem-vindo ao ZapEdido!
Escolha uma opção:
1️⃣ Fazer pedido
2️⃣ Falar com um atendente
3️⃣ Ver produtos
4️⃣ Ajuda`
}

func collectingPromptText() string {
	return "🛒 Pode mandar seu pedido! Exemplo: *2 mangas e 3 queijos*\nQuando terminar, envie *pronto*."
}

func handoffText() string {
	return "👤 Certo! Um atendente vai falar com você em instantes. Envie *voltar* quando quiser usar o robô de novo."
}

func catalogText(catalog []models.Product) string {
	var b strings.Builder
	b.WriteString("📋 Produtos disponíveis:\n")
	for _, product := range catalog {
		if !product.Enabled {
			continue
		}
		b.WriteString(fmt.Sprintf("• %s\n", product.Name))
	}
	return strings.TrimRight(b.String(), "\n")
}

// helpText shows how to order, with one random two-product example so the
// message doesn't look canned
func helpText(catalog []models.Product) string {
	example := "2 mangas e 3 queijos"
	var enabled []models.Product
	for _, product := range catalog {
		if product.Enabled {
			enabled = append(enabled, product)
		}
	}
	if len(enabled) >= 2 {
		i := rand.Intn(len(enabled))
		j := rand.Intn(len(enabled) - 1)
		if j >= i {
			j++
		}
		example = fmt.Sprintf("%d %s e %d %s",
			1+rand.Intn(4), enabled[i].Name, 1+rand.Intn(4), enabled[j].Name)
	}
	return fmt.Sprintf(`ℹ️ Como funciona:
Envie *1* para começar um pedido, depois mande os itens em texto livre.
Exemplo: *%s*
Envie *pronto* para ver o resumo e *confirmar* para finalizar.`, example)
}

func summaryText(items []parser.LedgerItem) string {
	var b strings.Builder
	b.WriteString("📝 Resumo do seu pedido:\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("• %dx %s\n", item.Quantity, item.Product.Name))
	}
	b.WriteString("Responda *confirmar* para finalizar ou *não* para alterar.")
	return b.String()
}

func reminderText(count int, items []parser.LedgerItem) string {
	return fmt.Sprintf("⏰ Lembrete %d/%d\n%s", count, maxReminders, summaryText(items))
}

func itemsAddedText(lines []parser.OrderLine) string {
	var b strings.Builder
	b.WriteString("✅ Anotado:\n")
	for _, line := range lines {
		b.WriteString(fmt.Sprintf("• %dx %s\n", line.Quantity, line.Product.Name))
	}
	b.WriteString("Algo mais? Envie *pronto* para finalizar.")
	return b.String()
}

func disabledItemsText(hits []parser.DisabledHit) string {
	names := make([]string, 0, len(hits))
	for _, hit := range hits {
		names = append(names, hit.Product.Name)
	}
	return fmt.Sprintf("😕 Estamos sem %s no momento, esses itens ficaram de fora.",
		strings.Join(names, ", "))
}

func unrecognizedText() string {
	return "🤔 Não entendi nenhum item. Pode escrever de outro jeito? Exemplo: *2 mangas e 3 queijos*"
}

func emptyOrderText() string {
	return "🛒 Seu pedido ainda está vazio. Mande os itens primeiro, por exemplo: *2 mangas*"
}

func confirmedText(items []parser.LedgerItem) string {
	var b strings.Builder
	b.WriteString("🎉 Pedido confirmado!\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("• %dx %s\n", item.Quantity, item.Product.Name))
	}
	b.WriteString("Obrigado pela preferência! 💚")
	return b.String()
}

func pendingSavedText() string {
	return "📦 Como não recebemos sua confirmação, guardamos seu pedido como *pendente*. É só chamar quando quiser!"
}

func canceledText() string {
	return "❌ Pedido cancelado. Quando quiser começar de novo, é só mandar uma mensagem!"
}

func deniedText() string {
	return "🔄 Sem problemas! Recomeçamos do zero, pode mandar os itens."
}

func persistErrorText() string {
	return "⚠️ Tivemos um problema ao salvar seu pedido. Pode tentar *confirmar* de novo em instantes?"
}
