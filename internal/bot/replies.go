package bot

// 所有面向用户的回复文案集中在这里，便于审阅和调整。
const (
	replyStart = "你好，我是 VoxBuddy —— 先授权、后克隆的语音合成机器人。\n\n" +
		"使用步骤：\n" +
		"1) 发送 /consent 确认这是你本人的声音，或你已获得明确的书面授权。\n" +
		"2) 授权后上传一段语音（10-30 秒），它会被保存为你的说话人样本。\n" +
		"3) 使用 /ans <文本>，我会用相似的声音风格回复音频。\n\n" +
		"重要提示：禁止在未经许可的情况下上传他人的声音，滥用将被拒绝。"

	replyHelp = "/start - 使用说明\n" +
		"/consent - 记录授权，然后上传语音样本\n" +
		"/ans <文本> - 用你保存的声音合成文本\n" +
		"/help - 显示本帮助"

	replyConsent = "授权已记录。请发送一段语音（10-30 秒），它将被保存为你的说话人样本。"

	replyConversionFailed = "音频转换失败，请确认服务器已安装 ffmpeg 后重试。"

	replyConsentRequired = "你还没有授权。请先发送 /consent，再上传语音样本。"

	replySampleExists = "你的说话人样本已存在。如需更换，请先手动删除旧样本再重新上传。"

	replySampleSaved = "说话人样本保存成功。现在可以使用 /ans <文本> 合成你的声音了。"

	replyUsage = "用法：/ans <文本> —— 例如：/ans 你好，最近怎么样？"

	replyPolicyRefusal = "我不会在没有书面授权的情况下克隆特定第三方或名人的声音。" +
		"如果你想用自己的声音，请先 /consent 并上传语音样本。"

	replyNoSample = "没有找到你的说话人样本。请先发送 /consent，再上传一段语音。"

	replyEngineUnavailable = "合成引擎当前不可用，请稍后再试或联系管理员。"

	replyAck = "开始合成 —— 可能需要一点时间（取决于模型和服务器负载）。"

	replyBusy = "合成任务排队已满，请稍后重试。"

	replySynthFailedFmt = "合成失败，请稍后重试。错误：%s"

	replyGenericError = "处理过程中出了点问题，我们会尽快排查。"

	replySampleTooShortFmt = "语音太短（%d 秒），请上传至少 %d 秒的样本。"

	replySampleTooLongFmt = "语音太长（%d 秒），请上传不超过 %d 秒的样本。"
)
