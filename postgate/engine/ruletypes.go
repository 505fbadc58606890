package engine

type AccountRuleFunc = func(c *AccountContext) error
type PostRuleFunc = func(c *PostContext) error
