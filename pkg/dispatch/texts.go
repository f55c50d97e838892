package dispatch

const (
	TagMoreInfo = "more_info"
	TagNoAction = "no_action"

	channelURL = "https://t.me/zerocodestudios"
	websiteURL = "https://deyo.lol/"

	echoPrefix = "You said: "
)

const welcomeText = "🏢 **ZeroCodeStudios** 🏢\n" +
	"━━━━━━━━━━━━━━━━━━━━━\n\n" +
	"👨‍💻 **Founder - Deyo** 👨‍💻\n\n" +
	"👨‍💼 **Founder - Xynx** 👨‍💼\n\n" +
	"━━━━━━━━━━━━━━━━━━━━━"

const helpText = "😎 **Yo, Chill Brat!** 😎\n\n" +
	"🚀 There's a **LOT** more to come! 🚀\n\n" +
	"✨ **Stay tuned for:**\n" +
	"▪️ Amazing features\n" +
	"▪️ Cool updates\n" +
	"▪️ Epic surprises\n\n" +
	"🎯 **Available Commands:**\n" +
	"▪️ /start - Show main menu\n" +
	"▪️ /help - Show this message\n" +
	"▪️ /ping - Check if the bot is alive\n\n" +
	"💫 **Keep exploring! The best is yet to come!** 💫"

const pongText = "🏓 Pong!"

const commandListText = "📋 **Available Commands:**\n\n" +
	"▪️ /start - Show main menu with links\n" +
	"▪️ /help - Show this help message\n" +
	"▪️ /ping - Check if the bot is alive\n\n" +
	"💡 Use these commands to navigate the bot!"

const noActionText = "🌍 Xynx's world is amazing! Stay tuned for more updates!"
