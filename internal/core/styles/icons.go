package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconBell     = "\U000F009A" // 󰂚
	IconBellOff  = "\U000F009B" // 󰂛
	IconSound    = "\U000F057E" // 󰕾
	IconMute     = "\U000F075F" // 󰝟
	IconCritical = ""     //
	IconWarning  = ""     //
	IconInfo     = ""     //
	IconSuccess  = ""     //
	IconFilter   = ""     //
	IconDot      = "•"
)
