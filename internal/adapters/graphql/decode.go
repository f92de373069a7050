package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/memefi-tapper/internal/domain"
)

// flexInt accepts JSON numbers, numeric strings and null. The gateway
// serializes large balances as strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}

	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decode number %q: %w", s, err)
	}
	*f = flexInt(fl)
	return nil
}

// flexTime accepts RFC 3339 strings, unix timestamps (seconds or
// milliseconds) and null.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	if raw == "null" || raw == `""` {
		*f = flexTime{}
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := parseTimestamp(s)
		if err != nil {
			return err
		}
		*f = flexTime(parsed)
		return nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("decode timestamp %s: %w", raw, err)
	}
	if n > 1e12 {
		*f = flexTime(time.UnixMilli(n).UTC())
	} else {
		*f = flexTime(time.Unix(n, 0).UTC())
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
}

func parseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return parsed, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("decode timestamp %q: %w", s, firstErr)
}

func (f flexTime) Time() time.Time {
	return time.Time(f)
}

type bossDTO struct {
	Level         flexInt `json:"level"`
	CurrentHealth flexInt `json:"currentHealth"`
	MaxHealth     flexInt `json:"maxHealth"`
}

type freeBoostsDTO struct {
	CurrentTurboAmount        flexInt `json:"currentTurboAmount"`
	CurrentRefillEnergyAmount flexInt `json:"currentRefillEnergyAmount"`
}

type gameConfigDTO struct {
	CoinsAmount         flexInt       `json:"coinsAmount"`
	CurrentEnergy       flexInt       `json:"currentEnergy"`
	MaxEnergy           flexInt       `json:"maxEnergy"`
	WeaponLevel         flexInt       `json:"weaponLevel"`
	EnergyLimitLevel    flexInt       `json:"energyLimitLevel"`
	EnergyRechargeLevel flexInt       `json:"energyRechargeLevel"`
	TapBotLevel         flexInt       `json:"tapBotLevel"`
	SpinEnergyTotal     flexInt       `json:"spinEnergyTotal"`
	Nonce               string        `json:"nonce"`
	CurrentBoss         bossDTO       `json:"currentBoss"`
	FreeBoosts          freeBoostsDTO `json:"freeBoosts"`
}

func (d gameConfigDTO) toDomain() domain.GameState {
	return domain.GameState{
		Coins:               int64(d.CoinsAmount),
		CurrentEnergy:       int64(d.CurrentEnergy),
		MaxEnergy:           int64(d.MaxEnergy),
		WeaponLevel:         int(d.WeaponLevel),
		EnergyLimitLevel:    int(d.EnergyLimitLevel),
		EnergyRechargeLevel: int(d.EnergyRechargeLevel),
		TapBotLevel:         int(d.TapBotLevel),
		SpinEnergy:          int(d.SpinEnergyTotal),
		Nonce:               d.Nonce,
		Boss: domain.Boss{
			Level:         int(d.CurrentBoss.Level),
			CurrentHealth: int64(d.CurrentBoss.CurrentHealth),
			MaxHealth:     int64(d.CurrentBoss.MaxHealth),
		},
		FreeBoosts: domain.FreeBoosts{
			TurboAmount:  int(d.FreeBoosts.CurrentTurboAmount),
			RefillAmount: int(d.FreeBoosts.CurrentRefillEnergyAmount),
		},
	}
}

type tapBotDTO struct {
	DamagePerSec  flexInt  `json:"damagePerSec"`
	EndsAt        flexTime `json:"endsAt"`
	IsPurchased   bool     `json:"isPurchased"`
	TotalAttempts flexInt  `json:"totalAttempts"`
	UsedAttempts  flexInt  `json:"usedAttempts"`
}

func (d tapBotDTO) toConfig() domain.TapBotConfig {
	return domain.TapBotConfig{
		UsedAttempts:  int(d.UsedAttempts),
		TotalAttempts: int(d.TotalAttempts),
		Purchased:     d.IsPurchased,
		EndsAt:        d.EndsAt.Time(),
	}
}

func (d tapBotDTO) toRun() domain.TapBotRun {
	return domain.TapBotRun{
		DamagePerSec: int64(d.DamagePerSec),
		EndsAt:       d.EndsAt.Time(),
	}
}

type spinDTO struct {
	GameConfig struct {
		CoinsAmount     flexInt `json:"coinsAmount"`
		SpinEnergyTotal flexInt `json:"spinEnergyTotal"`
	} `json:"gameConfig"`
	SpinResults []struct {
		RewardAmount flexInt `json:"rewardAmount"`
		RewardType   string  `json:"rewardType"`
	} `json:"spinResults"`
}

func (d spinDTO) toDomain() domain.SpinResult {
	result := domain.SpinResult{
		Coins:      int64(d.GameConfig.CoinsAmount),
		SpinEnergy: int(d.GameConfig.SpinEnergyTotal),
	}
	if len(d.SpinResults) > 0 {
		result.RewardAmount = int64(d.SpinResults[0].RewardAmount)
		result.RewardType = d.SpinResults[0].RewardType
	}
	return result
}

type campaignDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type campaignListsDTO struct {
	Special []campaignDTO `json:"special"`
	Normal  []campaignDTO `json:"normal"`
}

func (d campaignListsDTO) toDomain() domain.CampaignLists {
	convert := func(in []campaignDTO) []domain.Campaign {
		out := make([]domain.Campaign, 0, len(in))
		for _, c := range in {
			if c.ID == "" {
				continue
			}
			out = append(out, domain.Campaign{ID: c.ID, Name: c.Name})
		}
		return out
	}

	return domain.CampaignLists{Special: convert(d.Special), Normal: convert(d.Normal)}
}

type taskDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type taskDetailDTO struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Status                  string   `json:"status"`
	UserTaskID              string   `json:"userTaskId"`
	VerificationAvailableAt flexTime `json:"verificationAvailableAt"`
}

func (d taskDetailDTO) toDomain() domain.TaskDetail {
	return domain.TaskDetail{
		ID:                      d.ID,
		Name:                    d.Name,
		Status:                  domain.TaskStatus(d.Status),
		UserTaskID:              d.UserTaskID,
		VerificationAvailableAt: d.VerificationAvailableAt.Time(),
	}
}

type completionDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type loginDTO struct {
	AccessToken string `json:"access_token"`
}
