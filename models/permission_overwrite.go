package models

import (
	"encoding/json"
	"fmt"
)

// OverwriteTargetType, overwrite'ın hedef tipidir: rol veya kullanıcı.
// Değerler Discord payload'ındaki integer'larla aynıdır (0 = role, 1 = user).
type OverwriteTargetType int

const (
	OverwriteTargetRole OverwriteTargetType = 0
	OverwriteTargetUser OverwriteTargetType = 1
)

// String, log ve hata mesajları için.
func (t OverwriteTargetType) String() string {
	switch t {
	case OverwriteTargetRole:
		return "role"
	case OverwriteTargetUser:
		return "user"
	default:
		return fmt.Sprintf("OverwriteTargetType(%d)", int(t))
	}
}

// PermissionOverwrite, bir kanal için rol veya kullanıcıya özel allow/deny çifti.
//
// Kanalın Overwrites map'inde TargetID ile key'lenir. @everyone overwrite'ı
// için key guild ID'sidir (@everyone rolünün ID'si = guild ID).
//
// Uygulama formülü: permissions = (permissions &^ deny) | allow
//
// Invariant: Allow ve Deny aynı bit'i paylaşamaz. Validate bunu kontrol eder;
// resolver ise gözlemlediği ihlali bozulmuş veri olarak log'lar.
type PermissionOverwrite struct {
	TargetID   Snowflake           `json:"id"`
	TargetType OverwriteTargetType `json:"type"`
	Allow      Permission          `json:"allow"`
	Deny       Permission          `json:"deny"`
}

// Apply, overwrite'ı verilen permission'a uygular.
func (o PermissionOverwrite) Apply(p Permission) Permission {
	return (p &^ o.Deny) | o.Allow
}

// Validate, overwrite'ın geçerli olup olmadığını kontrol eder.
//
// Kurallar:
// 1. Target type role veya user olmalı
// 2. Allow ve deny aynı bit'i set edemez (overlap yasak)
// 3. Tanımsız bit'ler kullanılamaz
func (o *PermissionOverwrite) Validate() error {
	if o.TargetType != OverwriteTargetRole && o.TargetType != OverwriteTargetUser {
		return fmt.Errorf("unknown overwrite target type %d", int(o.TargetType))
	}
	if o.Allow&o.Deny != 0 {
		return fmt.Errorf("allow and deny cannot have overlapping permission bits")
	}
	if (o.Allow|o.Deny)&^PermissionAll != 0 {
		return fmt.Errorf("overwrite contains undefined permission bits")
	}
	return nil
}

// OverwriteFlag, bir capability için overwrite'taki üç durumlu değer.
type OverwriteFlag int

const (
	OverwriteInherit OverwriteFlag = iota // ne allow ne deny: rolden gelir
	OverwriteAllow
	OverwriteDeny
)

// NewPermissionOverwriteFromFlags, isim → flag map'inden overwrite oluşturur.
//
//	o, err := NewPermissionOverwriteFromFlags(roleID, OverwriteTargetRole, map[string]OverwriteFlag{
//	    "send_messages": OverwriteDeny,
//	    "view_channel":  OverwriteAllow,
//	})
//
// Bilinmeyen isim veya geçersiz flag hata döner.
// Deprecated alias'lar kabul edilir ve yerine geçen bit'e yazılır.
func NewPermissionOverwriteFromFlags(target Snowflake, targetType OverwriteTargetType, flags map[string]OverwriteFlag) (PermissionOverwrite, error) {
	o := PermissionOverwrite{TargetID: target, TargetType: targetType}

	for name, flag := range flags {
		bit, _, ok := PermissionBitByName(name)
		if !ok {
			return PermissionOverwrite{}, fmt.Errorf("unknown permission name %q", name)
		}

		switch flag {
		case OverwriteInherit:
		case OverwriteAllow:
			o.Allow |= bit
		case OverwriteDeny:
			o.Deny |= bit
		default:
			return PermissionOverwrite{}, fmt.Errorf("invalid overwrite flag %d for %q", int(flag), name)
		}
	}

	if err := o.Validate(); err != nil {
		return PermissionOverwrite{}, err
	}
	return o, nil
}

// SetOverwriteRequest, kanal overwrite oluşturma/güncelleme isteği.
// Hedef ID URL'den gelir, body sadece tip ve bit'leri taşır.
//
// Bit'ler iki şekilde verilebilir: allow/deny integer'ları veya isim → flag map'i
// ({"send_messages": "deny"}). İkisi birlikte kullanılamaz.
type SetOverwriteRequest struct {
	Type  OverwriteTargetType      `json:"type"`
	Allow Permission               `json:"allow"`
	Deny  Permission               `json:"deny"`
	Flags map[string]OverwriteFlag `json:"flags,omitempty"`
}

// Validate, SetOverwriteRequest'in geçerli olup olmadığını kontrol eder.
func (r *SetOverwriteRequest) Validate() error {
	if len(r.Flags) > 0 && (r.Allow != 0 || r.Deny != 0) {
		return fmt.Errorf("flags cannot be combined with allow/deny")
	}
	o := PermissionOverwrite{TargetType: r.Type, Allow: r.Allow, Deny: r.Deny}
	return o.Validate()
}

// ToOverwrite, isteği verilen hedef için PermissionOverwrite'a çevirir.
// Flags doluysa bit'ler isimlerden hesaplanır.
func (r *SetOverwriteRequest) ToOverwrite(targetID Snowflake) (PermissionOverwrite, error) {
	if len(r.Flags) > 0 {
		return NewPermissionOverwriteFromFlags(targetID, r.Type, r.Flags)
	}
	return PermissionOverwrite{TargetID: targetID, TargetType: r.Type, Allow: r.Allow, Deny: r.Deny}, nil
}

// UnmarshalJSON, flag'i "allow" / "deny" / "inherit" string'i veya 0/1/2 olarak kabul eder.
func (f *OverwriteFlag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "inherit", "":
			*f = OverwriteInherit
		case "allow":
			*f = OverwriteAllow
		case "deny":
			*f = OverwriteDeny
		default:
			return fmt.Errorf("unknown overwrite flag %q", s)
		}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid overwrite flag: %w", err)
	}
	*f = OverwriteFlag(n)
	return nil
}

// UnmarshalJSON, type alanının hem integer (0/1) hem string ("role"/"member")
// olarak gelmesini kabul eder: eski API versiyonları string gönderir.
func (t *OverwriteTargetType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "role":
			*t = OverwriteTargetRole
		case "member", "user":
			*t = OverwriteTargetUser
		default:
			return fmt.Errorf("unknown overwrite type %q", s)
		}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid overwrite type: %w", err)
	}
	*t = OverwriteTargetType(n)
	return nil
}

// ChannelOverwrite, bir overwrite'ın ait olduğu kanal ile birlikte satır hali (repository okumaları için).
type ChannelOverwrite struct {
	ChannelID Snowflake `json:"channel_id"`
	PermissionOverwrite
}
