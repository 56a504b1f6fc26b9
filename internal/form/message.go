package form

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	messageTTL = 5 * time.Second
	bannerTTL  = 3 * time.Second
)

// Message kinds.
const (
	KindSuccess = "success"
	KindDanger  = "danger"
)

// User-facing texts.
const (
	MsgCreated      = "Contato cadastrado com sucesso."
	MsgCreateFailed = "Erro ao cadastrar contato."
	MsgUpdated      = "Contato atualizado com sucesso."
	MsgUpdateFailed = "Erro ao atualizar contato."
	MsgLoadFailed   = "Erro ao carregar dados para edição."
	MsgBadBirthDate = "Data de nascimento inválida."
	MsgDeleted      = "Contato excluído com sucesso."
	MsgDeleteFailed = "Erro ao excluir contato. Tente novamente."
	MsgConfirm      = "Tem certeza que deseja excluir este contato?"
)

// Message is a transient banner.
type Message struct {
	Kind string
	Text string
}

// channel holds at most one message and clears it when its timer fires. A
// newer message replaces the old one together with its timer.
type channel struct {
	msg   *Message
	timer clockwork.Timer
	seq   uint64
}

// set must be called with the controller lock held; clear runs later
// under the same lock.
func (ch *channel) set(clock clockwork.Clock, kind, text string, ttl time.Duration, lock func() func()) {
	if ch.timer != nil {
		ch.timer.Stop()
	}
	ch.seq++
	seq := ch.seq
	ch.msg = &Message{Kind: kind, Text: text}
	ch.timer = clock.AfterFunc(ttl, func() {
		defer lock()()
		if ch.seq == seq {
			ch.msg = nil
			ch.timer = nil
		}
	})
}

func (ch *channel) get() (Message, bool) {
	if ch.msg == nil {
		return Message{}, false
	}
	return *ch.msg, true
}

func (ch *channel) stop() {
	if ch.timer != nil {
		ch.timer.Stop()
		ch.timer = nil
	}
}
