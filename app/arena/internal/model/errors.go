package model

import "github.com/cockroachdb/errors"

// 引擎对外的错误类型，调用方通过 errors.Is 判断
var (
	// ErrInsufficientParticipants 混战参与者少于 3 个或 ID 重复
	ErrInsufficientParticipants = errors.New("insufficient participants")
	// ErrCapacityExceeded 玩家怪物栏已满
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidPairing 对战双方 ID 相同或一方不存在
	ErrInvalidPairing = errors.New("invalid pairing")
	// ErrNotFound 玩家、怪物、模板或技能槽不存在
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument 参数非法，如负经验、非正召唤数量
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoSkillPoints 技能点不足
	ErrNoSkillPoints = errors.New("no skill points")
	// ErrSkillMaxLevel 技能已满级
	ErrSkillMaxLevel = errors.New("skill at max level")
	// ErrForbidden 操作不属于当前玩家的怪物
	ErrForbidden = errors.New("forbidden")
)
