package graphql

const (
	opLogin               = "MutationTelegramUserLogin"
	opGameConfig          = "QUERY_GAME_CONFIG"
	opProcessTaps         = "MutationGameProcessTapsBatch"
	opSetNextBoss         = "telegramGameSetNextBoss"
	opActivateBooster     = "telegramGameActivateBooster"
	opPurchaseUpgrade     = "telegramGamePurchaseUpgrade"
	opSpinSlotMachine     = "SpinSlotMachine"
	opTapBotConfig        = "TapbotConfig"
	opTapBotStart         = "TapbotStart"
	opTapBotClaim         = "TapbotClaim"
	opCampaignLists       = "CampaignLists"
	opCampaignTasks       = "GetTasksList"
	opTaskByID            = "GetTaskById"
	opTwitterProfile      = "TwitterProfile"
	opTaskToVerification  = "CampaignTaskToVerification"
	opTaskMarkAsCompleted = "CampaignTaskMarkAsCompleted"
)

const gameConfigFields = `
  coinsAmount
  currentEnergy
  maxEnergy
  weaponLevel
  zonesCount
  tapsReward
  energyLimitLevel
  energyRechargeLevel
  tapBotLevel
  spinEnergyTotal
  nonce
  currentBoss {
    _id
    level
    currentHealth
    maxHealth
    __typename
  }
  freeBoosts {
    _id
    currentTurboAmount
    maxTurboAmount
    turboLastActivatedAt
    turboAmountLastRechargeDate
    currentRefillEnergyAmount
    maxRefillEnergyAmount
    refillEnergyLastActivatedAt
    refillEnergyAmountLastRechargeDate
    __typename
  }
  __typename`

const queryLogin = `mutation MutationTelegramUserLogin($webAppData: TelegramWebAppDataInput!, $referralCode: String) {
  telegramUserLogin(webAppData: $webAppData, referralCode: $referralCode) {
    access_token
    __typename
  }
}`

const queryGameConfig = `query QUERY_GAME_CONFIG {
  telegramGameGetConfig {` + gameConfigFields + `
  }
}`

const queryProcessTaps = `mutation MutationGameProcessTapsBatch($payload: TelegramGameTapsBatchInput!) {
  telegramGameProcessTapsBatch(payload: $payload) {` + gameConfigFields + `
  }
}`

const querySetNextBoss = `mutation telegramGameSetNextBoss {
  telegramGameSetNextBoss {` + gameConfigFields + `
  }
}`

const queryActivateBooster = `mutation telegramGameActivateBooster($boosterType: BoosterType!) {
  telegramGameActivateBooster(boosterType: $boosterType) {` + gameConfigFields + `
  }
}`

const queryPurchaseUpgrade = `mutation telegramGamePurchaseUpgrade($upgradeType: UpgradeType!) {
  telegramGamePurchaseUpgrade(type: $upgradeType) {` + gameConfigFields + `
  }
}`

const querySpinSlotMachine = `mutation SpinSlotMachine($payload: SlotMachineSpinInput!) {
  slotMachineSpinV2(payload: $payload) {
    gameConfig {
      coinsAmount
      spinEnergyTotal
      __typename
    }
    spinResults {
      id
      combination
      rewardAmount
      rewardType
      __typename
    }
    __typename
  }
}`

const queryTapBotConfig = `query TapbotConfig {
  telegramGameTapbotGetConfig {
    damagePerSec
    endsAt
    id
    isPurchased
    startsAt
    totalAttempts
    usedAttempts
    __typename
  }
}`

const queryTapBotStart = `mutation TapbotStart {
  telegramGameTapbotStart {
    damagePerSec
    endsAt
    id
    isPurchased
    startsAt
    totalAttempts
    usedAttempts
    __typename
  }
}`

const queryTapBotClaim = `mutation TapbotClaim {
  telegramGameTapbotClaimCoins {
    damagePerSec
    endsAt
    id
    isPurchased
    startsAt
    totalAttempts
    usedAttempts
    __typename
  }
}`

const queryCampaignLists = `query CampaignLists {
  campaignLists {
    special {
      id
      name
      type
      status
      __typename
    }
    normal {
      id
      name
      type
      status
      __typename
    }
    __typename
  }
}`

const queryCampaignTasks = `query GetTasksList($campaignId: String!) {
  campaignTasks(campaignConfigId: $campaignId) {
    id
    name
    status
    type
    __typename
  }
}`

const queryTaskByID = `query GetTaskById($taskId: String!) {
  campaignTaskGetConfig(taskId: $taskId) {
    id
    name
    status
    userTaskId
    verificationAvailableAt
    __typename
  }
}`

const queryTwitterProfile = `query TwitterProfile {
  twitterProfile {
    id
    __typename
  }
}`

const queryTaskToVerification = `mutation CampaignTaskToVerification($taskConfigId: String!) {
  campaignTaskMoveToVerificationV2(taskConfigId: $taskConfigId) {
    id
    name
    status
    userTaskId
    verificationAvailableAt
    __typename
  }
}`

const queryTaskMarkAsCompleted = `mutation CampaignTaskMarkAsCompleted($userTaskId: String!) {
  campaignTaskMarkAsCompleted(userTaskId: $userTaskId) {
    id
    status
    __typename
  }
}`
