package handlers

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"sentry-bot/audit"
	"sentry-bot/models"
	"sentry-bot/suspicion"
	"sentry-bot/utils"
)

// MemberAdd 处理成员加入服务器事件
// 对每个新成员运行可疑账号检测；检测到恶意机器人时安排延迟自动封禁
func (m *Moderation) MemberAdd(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e.User == nil || e.User.ID == s.State.User.ID {
		return
	}

	account := models.NewAccountSnapshot(e.User)
	verdict := m.evaluator.Evaluate(account)
	if !verdict.IsSuspicious() {
		return
	}

	log.Printf("检测到可疑账号 %s (%s) 加入服务器 %s: %s",
		account.Tag(), account.ID, e.GuildID, strings.Join(verdict.Reasons, "; "))

	reporter := models.NewAccountSnapshot(s.State.User)

	// 记录可疑账号审核事件（落盘 + modlog 通知）
	err := m.sink.Record(audit.Event{
		Type:    audit.EventSuspect,
		GuildID: e.GuildID,
		Target:  account,
		Actor:   reporter,
		Reasons: verdict.Reasons,
	})
	if err != nil {
		utils.Error("moderation", "audit", "记录可疑账号事件失败: "+err.Error())
	}

	// 恶意机器人：与任何审核会话无关，直接安排延迟自动封禁
	if account.IsBot && verdict.HasReason(suspicion.ReasonMaliciousBot) {
		m.autoban.Schedule(e.GuildID, account, reporter)
	}
}
