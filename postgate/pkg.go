package postgate

import (
	"github.com/postdeck/gatehouse/postgate/countstore"
	"github.com/postdeck/gatehouse/postgate/engine"
)

type Engine = engine.Engine
type AccountMeta = engine.AccountMeta
type Eligibility = engine.Eligibility
type EligibilityResolver = engine.EligibilityResolver
type SafetyChecker = engine.SafetyChecker
type SafetyFinding = engine.SafetyFinding
type RuleSet = engine.RuleSet
type PostingDecision = engine.PostingDecision
type RuleSummary = engine.RuleSummary

type AccountContext = engine.AccountContext
type PostContext = engine.PostContext
type PostMeta = engine.PostMeta
type CommunityMeta = engine.CommunityMeta

type AccountRuleFunc = engine.AccountRuleFunc
type PostRuleFunc = engine.PostRuleFunc

var (
	ReasonUnableToVerify = engine.ReasonUnableToVerify
	ReasonNotEligible    = engine.ReasonNotEligible

	PeriodTotal = countstore.PeriodTotal
	PeriodWeek  = countstore.PeriodWeek
	PeriodDay   = countstore.PeriodDay
	PeriodHour  = countstore.PeriodHour
)
